package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriteLinks_InlineLinks(t *testing.T) {
	t.Parallel()
	src := "See [Foo](old/path) for details."
	got := RewriteLinks(src, map[string]string{"old/path": "https://docs.rs/c/1.0/c/struct.Foo.html"})
	assert.Equal(t, "See [Foo](https://docs.rs/c/1.0/c/struct.Foo.html) for details.", got)
}

func TestRewriteLinks_ReferenceStyleLinks(t *testing.T) {
	t.Parallel()
	src := "See [Foo][ref] for details.\n\n[ref]: old/path"
	got := RewriteLinks(src, map[string]string{"old/path": "https://example.com/new"})
	assert.Contains(t, got, "[ref]: https://example.com/new")
}

func TestRewriteLinks_EmptyMap(t *testing.T) {
	t.Parallel()
	src := "Hello [world](url)."
	assert.Equal(t, src, RewriteLinks(src, nil))
	assert.Equal(t, src, RewriteLinks(src, map[string]string{}))
}

func TestRewriteLinks_NoMatchingLinks(t *testing.T) {
	t.Parallel()
	src := "Check [this](keep-me) out."
	assert.Equal(t, src, RewriteLinks(src, map[string]string{"other": "https://x"}))
}

func TestRewriteLinks_MultipleLinks(t *testing.T) {
	t.Parallel()
	src := "[A](a-dest) and [B](b-dest) together."
	got := RewriteLinks(src, map[string]string{
		"a-dest": "https://a",
		"b-dest": "https://b",
	})
	assert.Contains(t, got, "(https://a)")
	assert.Contains(t, got, "(https://b)")
}

func TestResolveLinks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		links map[string]string
		want  string
	}{
		{
			name:  "intra-doc destination",
			src:   "Returns a [`Value`](crate::Value).",
			links: map[string]string{"crate::Value": "https://docs.rs/serde_json/1.0.0/serde_json/enum.Value.html"},
			want:  "Returns a [`Value`](https://docs.rs/serde_json/1.0.0/serde_json/enum.Value.html).",
		},
		{
			name:  "shortcut link gets a definition",
			src:   "See [`Map`] for details.\n",
			links: map[string]string{"`Map`": "https://docs.rs/serde_json/1.0.0/serde_json/struct.Map.html"},
			want:  "See [`Map`] for details.\n\n[`Map`]: https://docs.rs/serde_json/1.0.0/serde_json/struct.Map.html\n",
		},
		{
			name: "definitions sorted by label",
			src:  "[b] and [a]",
			links: map[string]string{
				"b": "https://b",
				"a": "https://a",
			},
			want: "[b] and [a]\n\n[a]: https://a\n[b]: https://b\n",
		},
		{
			name:  "existing definition is not duplicated",
			src:   "[Foo]\n\n[Foo]: crate::Foo",
			links: map[string]string{"Foo": "https://foo", "crate::Foo": "https://foo"},
			want:  "[Foo]\n\n[Foo]: https://foo",
		},
		{
			name:  "label not present",
			src:   "Nothing here.",
			links: map[string]string{"`Other`": "https://other"},
			want:  "Nothing here.",
		},
		{
			name:  "no links",
			src:   "[x](y)",
			links: nil,
			want:  "[x](y)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ResolveLinks(tt.src, tt.links))
		})
	}
}
