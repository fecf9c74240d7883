package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/rubico-playground/internal/bridge"
)

func TestFetch(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr error
	}{
		{
			name: "escaped html",
			ref:  "data:text/html;charset=utf-8,%3Cp%3Ehi%3C%2Fp%3E",
			want: "<p>hi</p>",
		},
		{
			name:    "http scheme",
			ref:     "https://example.com/",
			wantErr: ErrUnsupportedScheme,
		},
		{
			name:    "no scheme",
			ref:     "just text",
			wantErr: ErrUnsupportedScheme,
		},
		{
			name:    "plain text",
			ref:     "data:text/plain,hello",
			wantErr: ErrUnsupportedMediaType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fetch(tt.ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchBridgeReference(t *testing.T) {
	script := "console.log('a & b', 100 % 7)"
	ref := bridge.ToRenderableReference(script)

	markup, err := Fetch(ref.String())
	require.NoError(t, err)
	assert.Equal(t, bridge.Markup(script), markup)
}

func TestParsePage(t *testing.T) {
	markup := `<!DOCTYPE html><html><body><div id="a" class="x y">text</div>` +
		`<script type="module">moduleBody()</script>` +
		`<script>classicBody()</script>` +
		`<script type="module" src="https://example.com/lib.js"></script>` +
		`</body></html>`

	page, err := ParsePage(markup)
	require.NoError(t, err)

	require.Len(t, page.Scripts, 3)
	assert.Equal(t, Script{Module: true, Text: "moduleBody()"}, page.Scripts[0])
	assert.Equal(t, Script{Text: "classicBody()"}, page.Scripts[1])
	assert.Equal(t, Script{Module: true, Src: "https://example.com/lib.js"}, page.Scripts[2])
	assert.Equal(t, []int{1, 0, 2}, page.Ordered())

	found := page.DOM.Query("#a")
	require.Len(t, found, 1)
	assert.Equal(t, "div", found[0].TagName)
	assert.Equal(t, "x y", found[0].ClassName)
	assert.Len(t, page.DOM.Query(".y"), 1)
	assert.Equal(t, []string{"text"}, page.DOM.Lines())
}

func TestOpenBridgeReference(t *testing.T) {
	script := "const x = '</b>'"
	page, err := Open(bridge.ToRenderableReference(script).String())
	require.NoError(t, err)

	require.Len(t, page.Scripts, 1)
	assert.True(t, page.Scripts[0].Module)
	assert.Equal(t, script, page.Scripts[0].Text)
	assert.Empty(t, page.DOM.Lines())
}
