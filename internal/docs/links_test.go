package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemURL(t *testing.T) {
	t.Parallel()
	crate := demoCrate()

	tests := []struct {
		id   ID
		want string
	}{
		{0, "https://docs.rs/demo/1.2.3/demo/index.html"},
		{1, "https://docs.rs/demo/1.2.3/demo/de/index.html"},
		{21, "https://docs.rs/demo/1.2.3/demo/de/fn.from_str.html"},
		{20, "https://docs.rs/demo/1.2.3/demo/de/trait.Deserialize.html"},
		{2, "https://docs.rs/demo/1.2.3/demo/struct.Config.html"},
		{3, "https://docs.rs/demo/1.2.3/demo/enum.Mode.html"},
		{5, "https://docs.rs/demo/1.2.3/demo/type.Result.html"},
		{6, "https://docs.rs/demo/1.2.3/demo/constant.MAX.html"},
		{7, "https://docs.rs/demo/1.2.3/demo/macro.demo_macro.html"},
		{12, "https://docs.rs/demo/1.2.3/demo/static.GLOBAL.html"},
		{60, "https://docs.rs/demo/1.2.3/demo/enum.Mode.html#variant.Fast"},
		{30, "https://docs.rs/demo/1.2.3/demo/struct.Config.html#structfield.name"},
		// Dependency with an html_root_url.
		{71, "https://docs.rs/serde/1.0.200/serde/struct.Hidden.html"},
		// Dependency without one falls back to the latest release.
		{95, "https://docs.rs/tracing_core/latest/tracing_core/field/trait.Value.html"},
		// Not in paths.
		{31, ""},
		{9999, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ItemURL(crate, tt.id, "", "demo", "1.2.3"), "id %d", tt.id)
	}
}

func TestItemURL_BaseURL(t *testing.T) {
	t.Parallel()
	crate := demoCrate()

	const mirror = "https://docs.mirror.example/"
	assert.Equal(t, "https://docs.mirror.example/demo/1.2.3/demo/struct.Config.html",
		ItemURL(crate, 2, mirror, "demo", "1.2.3"))
	assert.Equal(t, "https://docs.mirror.example/tracing_core/latest/tracing_core/field/trait.Value.html",
		ItemURL(crate, 95, mirror, "demo", "1.2.3"))
	// A recorded html_root_url is kept as is.
	assert.Equal(t, "https://docs.rs/serde/1.0.200/serde/struct.Hidden.html",
		ItemURL(crate, 71, mirror, "demo", "1.2.3"))
}

func TestDocLinks(t *testing.T) {
	t.Parallel()
	crate := demoCrate()

	item := &RustdocItem{Links: map[string]ID{
		"`Config`":     2,
		"de::from_str": 21,
		"Missing":      9999,
	}}
	got := DocLinks(crate, item, DefaultBaseURL, "demo", "latest")
	assert.Equal(t, map[string]string{
		"`Config`":     "https://docs.rs/demo/latest/demo/struct.Config.html",
		"de::from_str": "https://docs.rs/demo/latest/demo/de/fn.from_str.html",
	}, got)

	assert.Nil(t, DocLinks(crate, &RustdocItem{}, "", "demo", "latest"))
	assert.Nil(t, DocLinks(crate, &RustdocItem{Links: map[string]ID{"x": 9999}}, "", "demo", "latest"))
}

func TestExternalCrateName(t *testing.T) {
	t.Parallel()

	crate := &RustdocCrate{ExternalCrates: map[uint32]ExternalCrate{
		1: {Name: "tracing_core", HTMLRootURL: "https://docs.rs/tracing-core/0.1.36/x86_64-unknown-linux-gnu/"},
		2: {Name: "serde"},
		3: {Name: "mylib", HTMLRootURL: "https://example.com/docs/"},
	}}

	tests := []struct {
		id   uint32
		want string
	}{
		{1, "tracing-core"},
		{2, "serde"},
		{3, "mylib"},
		{4, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, crate.ExternalCrateName(tt.id), "crate id %d", tt.id)
	}
}
