package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)
}

func TestComposeOrdering(t *testing.T) {
	jobID := int64(2)
	composer := NewPromptComposer(&fakeRecruitingStore{jobs: testJobs()})
	composer.now = fixedClock

	prompt := composer.Compose(context.Background(), PromptContext{
		Identity: "15550001111",
		Channel:  ChannelWhatsApp,
		JobID:    &jobID,
	})

	identityIdx := strings.Index(prompt, "You are talking to 15550001111")
	dateIdx := strings.Index(prompt, "Friday, 14 March 2025")
	jobsIdx := strings.Index(prompt, "available jobs right now")
	instrIdx := strings.Index(prompt, "Ask about prior quota attainment.")

	require.Positive(t, identityIdx)
	require.Greater(t, dateIdx, identityIdx)
	require.Greater(t, instrIdx, dateIdx)
	require.Greater(t, jobsIdx, instrIdx)
	require.Contains(t, prompt, "Do not reveal any information about other users")
	require.Contains(t, prompt, `"title":"Backend Engineer"`)
}

func TestComposeChannelFormatting(t *testing.T) {
	composer := NewPromptComposer(&fakeRecruitingStore{})
	composer.now = fixedClock

	withWA := composer.Compose(context.Background(), PromptContext{Channel: ChannelWhatsApp})
	require.Contains(t, withWA, "WhatsApp")

	plain := composer.Compose(context.Background(), PromptContext{})
	require.NotContains(t, plain, "WhatsApp")
}

func TestComposeStoreErrorDegrades(t *testing.T) {
	jobID := int64(1)
	composer := NewPromptComposer(&fakeRecruitingStore{jobsErr: errors.New("db down")})
	composer.now = fixedClock

	prompt := composer.Compose(context.Background(), PromptContext{
		Identity: "15550001111",
		JobID:    &jobID,
	})

	// Failed lookups drop their sections without failing the composition.
	require.NotContains(t, prompt, "available jobs right now")
	require.Contains(t, prompt, "You are talking to 15550001111")
}

func TestComposeMediaContext(t *testing.T) {
	composer := NewPromptComposer(&fakeRecruitingStore{})
	composer.now = fixedClock

	prompt := composer.Compose(context.Background(), PromptContext{MediaMimeType: "audio/ogg"})
	require.Contains(t, prompt, "shared an audio message")
	require.Contains(t, prompt, "cannot view its contents directly")

	prompt = composer.Compose(context.Background(), PromptContext{MediaMimeType: "application/pdf"})
	require.Contains(t, prompt, "shared a PDF document")
	require.NotContains(t, prompt, "download reference")

	prompt = composer.Compose(context.Background(), PromptContext{
		MediaMimeType: "application/pdf",
		MediaURL:      "https://lookaside.example/media-42",
	})
	require.Contains(t, prompt, "download reference is https://lookaside.example/media-42")
	require.Contains(t, prompt, "resume_url")
}
