package technology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Technology
		wantErr bool
	}{
		{name: "empty selects default", input: "", want: React},
		{name: "lowercase", input: "vue", want: Vue},
		{name: "mixed case with spaces", input: "  Svelte ", want: Svelte},
		{name: "angular", input: "ANGULAR", want: Angular},
		{name: "html", input: "html", want: HTML},
		{name: "unknown", input: "elm", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, "jsx", React.Extension())
	assert.Equal(t, "vue", Vue.Extension())
	assert.Equal(t, "svelte", Svelte.Extension())
	assert.Equal(t, "ts", Angular.Extension())
	assert.Equal(t, "html", HTML.Extension())
	assert.Equal(t, "generated-component.ts", Angular.Filename())
}

func TestNative(t *testing.T) {
	assert.True(t, React.Native())

	for _, tech := range []Technology{Vue, Svelte, Angular, HTML} {
		assert.False(t, tech.Native(), tech)
	}

	assert.False(t, Technology("elm").Valid())
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	require.Len(t, all, 5)

	all[0].Name = "changed"
	assert.Equal(t, "React", All()[0].Name)
}
