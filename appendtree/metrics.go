package appendtree

import (
	"errors"

	"github.com/forestrie/go-appendmerkle/merkle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var proofsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "appendmerkle_proofs_total",
	Help: "Proofs generated, by kind and outcome",
}, []string{"kind", "status"})

var leavesAppended = promauto.NewCounter(prometheus.CounterOpts{
	Name: "appendmerkle_leaves_appended_total",
	Help: "Leaves appended, including the null leaves under appended subtrees",
})

var nodesGrafted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "appendmerkle_nodes_grafted_total",
	Help: "Previously unknown nodes filled from proofs or extra node lists",
})

func proofStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, merkle.ErrIndexOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, merkle.ErrNotReady):
		return "not_ready"
	case errors.Is(err, merkle.ErrIncompleteData):
		return "incomplete"
	case errors.Is(err, merkle.ErrInvalidRange):
		return "invalid_range"
	default:
		return "error"
	}
}
