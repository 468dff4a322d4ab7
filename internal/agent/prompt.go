package agent

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

//go:embed system_prompt.md
var baseSystemPrompt string

//go:embed wa_formatting_prompt.md
var waFormattingPrompt string

//go:embed tool_usage_prompt.md
var toolUsagePrompt string

// Channel identifies the chat transport a turn arrived on. Channel-specific
// formatting rules are injected into the system prompt only for transports
// that have markup conventions.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
)

// PromptContext carries the dynamic inputs of one composition.
type PromptContext struct {
	// Identity is the end user's identifier (phone number), used to scope the
	// conversation and warn the model off other users' data. May be empty.
	Identity string
	// Channel selects channel-specific formatting rules.
	Channel Channel
	// JobID, when set, pulls that job's ai_instructions into the prompt.
	JobID *int64
	// MediaMimeType, when set, tells the model the user attached media it
	// cannot inspect directly.
	MediaMimeType string
	// MediaURL, when set, is the attachment's resolved download reference,
	// surfaced so the model can relay it (e.g. a resume link for an
	// application).
	MediaURL string
}

// PromptComposer assembles the system instruction for a turn. Composition is
// a pure function of its inputs and the clock; store lookups that fail merely
// drop their section, they never fail the turn.
type PromptComposer struct {
	store RecruitingStore
	now   func() time.Time
}

func NewPromptComposer(store RecruitingStore) *PromptComposer {
	return &PromptComposer{
		store: store,
		now:   time.Now,
	}
}

// Compose builds the system instruction string for one turn.
func (p *PromptComposer) Compose(ctx context.Context, pc PromptContext) string {
	var b strings.Builder
	b.WriteString(baseSystemPrompt)

	if pc.Identity != "" {
		fmt.Fprintf(&b, "\n\nYou are talking to %s. Do not reveal any information about other users to this user.", pc.Identity)
	}

	if pc.Channel == ChannelWhatsApp {
		b.WriteString("\n\n")
		b.WriteString(waFormattingPrompt)
	}

	fmt.Fprintf(&b, "\n\nCurrent date and time is %s.", p.now().Format("Monday, 2 January 2006 15:04 MST"))

	if pc.JobID != nil {
		p.writeJobInstructions(ctx, &b, *pc.JobID)
	}

	p.writeAvailableJobs(ctx, &b)

	if pc.MediaMimeType != "" {
		fmt.Fprintf(&b, "\n\n%sYou can acknowledge this, but you cannot view its contents directly.", mediaContext(pc.MediaMimeType))
		if pc.MediaURL != "" {
			fmt.Fprintf(&b, " Its download reference is %s; use it as the resume_url when submitting an application for this user.", pc.MediaURL)
		}
	}

	b.WriteString("\n\n")
	b.WriteString(toolUsagePrompt)

	return b.String()
}

func (p *PromptComposer) writeJobInstructions(ctx context.Context, b *strings.Builder, jobID int64) {
	job, err := p.store.GetJobByID(ctx, jobID)
	if err != nil {
		// Degrade to the base instructions; an unresolvable job never fails the turn.
		log.Printf("[PromptComposer] could not load job %d for instructions: %v", jobID, err)
		return
	}
	if job.AIInstructions == nil || *job.AIInstructions == "" {
		return
	}
	fmt.Fprintf(b, "\n\nSpecial instructions for the %s role: %s", job.Title, *job.AIInstructions)
}

func (p *PromptComposer) writeAvailableJobs(ctx context.Context, b *strings.Builder) {
	jobs, err := p.store.ListJobs(ctx)
	if err != nil {
		log.Printf("[PromptComposer] could not list jobs for prompt: %v", err)
		return
	}

	type jobSummary struct {
		ID         int64  `json:"id"`
		Title      string `json:"title"`
		Department string `json:"department"`
	}
	summaries := make([]jobSummary, 0, len(jobs))
	for _, j := range jobs {
		summaries = append(summaries, jobSummary{ID: j.ID, Title: j.Title, Department: j.Department})
	}

	raw, err := json.Marshal(summaries)
	if err != nil {
		log.Printf("[PromptComposer] could not marshal job summaries: %v", err)
		return
	}
	fmt.Fprintf(b, "\n\nThese are the available jobs right now: %s", raw)
}

// mediaContext maps a mime type to a sentence describing the attachment.
func mediaContext(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "image"):
		return "The user has shared an image with you. "
	case strings.Contains(mimeType, "video"):
		return "The user has shared a video with you. "
	case strings.Contains(mimeType, "audio"):
		return "The user has shared an audio message with you. "
	case strings.Contains(mimeType, "application/pdf"):
		return "The user has shared a PDF document with you. "
	default:
		return "The user has shared a file with you. "
	}
}
