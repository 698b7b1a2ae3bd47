package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/graphbio/bel/pkg/compile"
	"github.com/graphbio/bel/pkg/normalize"
	"github.com/graphbio/bel/pkg/store"

	"github.com/rabbitmq/amqp091-go"
)

// CompileJobMsg is one async compile request. The document travels
// either inline in Source or as an object key in SourceKey.
type CompileJobMsg struct {
	Message       string         `json:"message,omitempty"`
	CorrelationID string         `json:"correlation_id"`
	SourceKey     string         `json:"source_key,omitempty"`
	Source        string         `json:"source,omitempty"`
	Options       CompileOptions `json:"options"`
}

// CompileOptions is the wire form of the compile knobs a client may
// set per job.
type CompileOptions struct {
	AllowNested     bool `json:"allow_nested,omitempty"`
	StrictLegacy    bool `json:"strict_legacy,omitempty"`
	LenientPmod     bool `json:"lenient_pmod,omitempty"`
	RelaxedHeader   bool `json:"relaxed_header,omitempty"`
	SkipAnnotations bool `json:"skip_annotations,omitempty"`
}

// SessionOptions expands the wire options into compile options.
func (o CompileOptions) SessionOptions(resolver compile.Resolver) compile.Options {
	return compile.Options{
		AllowNested: o.AllowNested,
		Policy: normalize.Policy{
			StrictLegacy: o.StrictLegacy,
			LenientPmod:  o.LenientPmod,
		},
		RelaxedHeader:   o.RelaxedHeader,
		SkipAnnotations: o.SkipAnnotations,
		Resolver:        resolver,
	}
}

// EnqueueCompile records the job row and publishes the message. The
// row goes first so a fast worker always finds it.
func EnqueueCompile(ctx context.Context, ch *amqp091.Channel, st store.GraphStore, msg CompileJobMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := st.CreateJob(ctx, msg.CorrelationID, body); err != nil {
		return fmt.Errorf("failed to create compile job: %w", err)
	}
	if err := PublishFIFO(ch, CompileQueue, body); err != nil {
		return fmt.Errorf("failed to publish compile job: %w", err)
	}
	return nil
}
