package playground

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/GriffinCanCode/rubico-playground/internal/bridge"
	"github.com/GriffinCanCode/rubico-playground/internal/sandbox"
)

// Stream loads ref and calls emit with every complete line written to the
// output element, as it is written. Lines arrive in order and each is
// emitted once.
func Stream(ctx context.Context, loader Loader, ref bridge.Reference, outputID string, emit func(line string)) (*sandbox.Result, error) {
	page, err := sandbox.Open(ref.String())
	if err != nil {
		return nil, fmt.Errorf("failed to open reference: %w", err)
	}

	var mu sync.Mutex
	emitted := 0
	target := "#" + outputID

	page.DOM.Observe(func(change sandbox.DOMChange) {
		if change.Type != "set_text" || change.Selector != target {
			return
		}
		text, ok := change.Value.(string)
		if !ok {
			return
		}

		lines := strings.Split(text, "\n")
		complete := lines[:len(lines)-1]

		mu.Lock()
		defer mu.Unlock()
		if len(complete) < emitted {
			emitted = 0
		}
		for _, line := range complete[emitted:] {
			emit(line)
		}
		emitted = len(complete)
	})
	defer page.DOM.Observe(nil)

	return loader.Load(ctx, page)
}
