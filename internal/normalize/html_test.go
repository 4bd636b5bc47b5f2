package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBody(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "style is inlined ahead of the body",
			raw:  `<html><head><style>p{color:red}</style></head><body><p>hi</p></body></html>`,
			want: `<style type="text/css">p{color:red}</style><p>hi</p>`,
		},
		{
			name: "no style block",
			raw:  `<html><head><title>t</title></head><body><p>hi</p></body></html>`,
			want: `<p>hi</p>`,
		},
		{
			name: "empty style block is dropped",
			raw:  `<html><head><style></style></head><body><p>hi</p></body></html>`,
			want: `<p>hi</p>`,
		},
		{
			name: "other head content is discarded",
			raw: `<html><head><meta content="text/html; charset=UTF-8" http-equiv="content-type">` +
				`<style type="text/css">.c1{font-weight:700}</style><title>Doc</title></head>` +
				`<body class="c3"><p class="c1"><span>Bold</span></p></body></html>`,
			want: `<style type="text/css">.c1{font-weight:700}</style><p class="c1"><span>Bold</span></p>`,
		},
		{
			name: "selectors are not escaped",
			raw:  `<html><head><style>ul > li{margin:0}</style></head><body><ul><li>a</li></ul></body></html>`,
			want: `<style type="text/css">ul > li{margin:0}</style><ul><li>a</li></ul>`,
		},
		{
			name: "fragment without wrapper",
			raw:  `<p>bare</p>`,
			want: `<p>bare</p>`,
		},
		{
			name: "empty document",
			raw:  ``,
			want: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBody(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
