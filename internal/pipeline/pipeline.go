package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"replay-doctor/internal/diagnosis"
	"replay-doctor/internal/narrator"
	"replay-doctor/internal/rendezvous"
	"replay-doctor/internal/session"
)

// Store persists a recording's raw events for the lifetime of one request.
type Store interface {
	Save(events json.RawMessage) (string, error)
	RecordingPath(id string) string
	VideoPath(id string) string
	Delete(id string) error
}

// Renderer turns a persisted recording into a video artifact.
type Renderer interface {
	Render(ctx context.Context, inputPath, outputPath string) error
}

// Orchestrator runs one diagnosis request end to end:
// persist -> render -> diagnose -> fan out, with unconditional cleanup of
// both scratch artifacts on every exit path.
type Orchestrator struct {
	store    Store
	renderer Renderer
	client   diagnosis.Client
	broker   *rendezvous.Broker
}

func New(store Store, renderer Renderer, client diagnosis.Client, broker *rendezvous.Broker) *Orchestrator {
	return &Orchestrator{
		store:    store,
		renderer: renderer,
		client:   client,
		broker:   broker,
	}
}

// Process diagnoses one uploaded recording. raw is the unmodified events
// array from the request; name is only used for logging. On success the
// result also wakes any armed rendezvous waiter.
func (o *Orchestrator) Process(ctx context.Context, raw json.RawMessage, name string) (diagnosis.Result, error) {
	events, err := session.Decode(raw)
	if err != nil {
		return diagnosis.Result{}, &IngestionError{Err: err}
	}

	id, err := o.store.Save(raw)
	if err != nil {
		return diagnosis.Result{}, &StorageError{Err: err}
	}
	log.Printf("🎬 Processing recording %s (%q, %d events)", id, name, len(events))

	// Both artifacts go away no matter which stage fails below.
	defer func() {
		if err := o.store.Delete(id); err != nil {
			log.Printf("⚠️ failed to clean up recording %s: %v", id, err)
		}
	}()

	videoPath := o.store.VideoPath(id)
	if err := o.renderer.Render(ctx, o.store.RecordingPath(id), videoPath); err != nil {
		return diagnosis.Result{}, fmt.Errorf("render recording %s: %w", id, err)
	}

	video, err := os.ReadFile(videoPath)
	if err != nil {
		return diagnosis.Result{}, &StorageError{Err: fmt.Errorf("read rendered video: %w", err)}
	}

	res, err := o.client.Diagnose(ctx, video, narrator.Narrate(events))
	if err != nil {
		return diagnosis.Result{}, &DiagnosisError{Err: err}
	}

	if o.broker != nil && o.broker.Fulfill(res) {
		log.Printf("🤝 Recording %s delivered to a waiting tool call", id)
	}
	log.Printf("✅ Recording %s diagnosed with %d suggestions", id, len(res.Choices))
	return res, nil
}
