package compile

import (
	"context"
	"errors"
	"testing"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/lang"
)

func TestRunnerRun(t *testing.T) {
	runner := NewRunner(RunnerParams{Parallel: 2})
	documents := []Document{
		{Name: "good.bel", Text: testHeader + testCitation + "p(HGNC:AKT1) increases p(HGNC:JUN)\n"},
		{Name: "broken.bel", Text: "p(HGNC:AKT1)\n"},
		{Name: "empty.bel", Text: ""},
	}

	results := runner.Run(context.Background(), documents)
	if len(results) != len(documents) {
		t.Fatalf("Run() returned %d results, want %d", len(results), len(documents))
	}
	for i, document := range documents {
		if results[i].Name != document.Name {
			t.Errorf("results[%d].Name = %q, want input order %q", i, results[i].Name, document.Name)
		}
	}

	good := results[0]
	if good.Err != nil {
		t.Errorf("good.bel error = %v, want nil", good.Err)
	}
	if got := good.Result.Graph.EdgeCount(); got != 1 {
		t.Errorf("good.bel EdgeCount() = %d, want 1", got)
	}

	var fatal *common.FatalError
	if !errors.As(results[1].Err, &fatal) {
		t.Fatalf("broken.bel error = %v, want FatalError", results[1].Err)
	}
	if fatal.Diagnostic.Code != lang.CodeMissingMetadata {
		t.Errorf("broken.bel code = %d, want %d", fatal.Diagnostic.Code, lang.CodeMissingMetadata)
	}

	if results[2].Err != nil {
		t.Errorf("empty.bel error = %v, want nil", results[2].Err)
	}
	if got := results[2].Result.Graph.NodeCount(); got != 0 {
		t.Errorf("empty.bel NodeCount() = %d, want 0", got)
	}
}

func TestRunnerDefaultParallel(t *testing.T) {
	runner := NewRunner(RunnerParams{})
	if runner.parallel != 4 {
		t.Errorf("parallel = %d, want the default 4", runner.parallel)
	}
}
