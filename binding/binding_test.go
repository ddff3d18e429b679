package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/docflow/layout"
)

const sampleData = `{
  "user": {"name": "Ada", "age": 36},
  "items": [{"sku": "A-1", "qty": 2}, {"sku": "B-2", "qty": 1.5}],
  "empty": null
}`

func TestInterpolate(t *testing.T) {
	data, err := Decode([]byte(sampleData))
	require.NoError(t, err)

	cases := map[string]string{
		"Hello, ${user.name}!":              "Hello, Ada!",
		"${ user.age } years":               "36 years",
		"${items[1].sku} x ${items[1].qty}": "B-2 x 1.5",
		"missing ${user.email}":             "missing ${user.email}",
		"out of range ${items[5].sku}":      "out of range ${items[5].sku}",
		"null ${empty}":                     "null ",
		"no placeholders":                   "no placeholders",
		"${}":                               "${}",
	}
	for in, want := range cases {
		assert.Equal(t, want, Interpolate(in, data), in)
	}
	assert.Equal(t, "${user.name}", Interpolate("${user.name}", nil))
}

func TestBlocksCopies(t *testing.T) {
	data, err := Decode([]byte(sampleData))
	require.NoError(t, err)

	in := []layout.Block{
		layout.Heading(1, "Report for ${user.name}"),
		layout.ListItem(true, "${items[0].sku}"),
		layout.Break(),
	}
	out := Blocks(in, data)
	assert.Equal(t, []layout.Block{
		layout.Heading(1, "Report for Ada"),
		layout.ListItem(true, "A-1"),
		layout.Break(),
	}, out)
	assert.Equal(t, "Report for ${user.name}", in[0].Text)
}

func TestMeta(t *testing.T) {
	data, err := Decode([]byte(sampleData))
	require.NoError(t, err)
	meta := Meta(layout.DocumentMeta{Title: "${user.name}", Keywords: []string{"${items[0].sku}"}}, data)
	assert.Equal(t, "Ada", meta.Title)
	assert.Equal(t, []string{"A-1"}, meta.Keywords)
}

func TestDecode(t *testing.T) {
	data, err := Decode(nil)
	require.NoError(t, err)
	assert.Nil(t, data)

	_, err = Decode([]byte("{broken"))
	assert.Error(t, err)
}
