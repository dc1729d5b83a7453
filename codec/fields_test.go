package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuery(t *testing.T) {
	t.Run("empty string yields empty fields", func(t *testing.T) {
		assert.Empty(t, ParseQuery(""))
		assert.Empty(t, ParseQuery("?"))
	})

	t.Run("scalar pairs", func(t *testing.T) {
		f := ParseQuery("?name=mike&id=1")
		assert.Equal(t, "mike", f.Get("name"))
		assert.Equal(t, "1", f.Get("id"))
	})

	t.Run("unescapes keys and values", func(t *testing.T) {
		f := ParseQuery("full%20name=Mike+Smith&q=a%26b")
		assert.Equal(t, "Mike Smith", f.Get("full name"))
		assert.Equal(t, "a&b", f.Get("q"))
	})

	t.Run("repeated key reads last on Get", func(t *testing.T) {
		f := ParseQuery("id=1&id=2&id=3")
		assert.Equal(t, "3", f.Get("id"))
		assert.Equal(t, []string{"1", "2", "3"}, f.Values("id"))
	})

	t.Run("bracket suffix accumulates array", func(t *testing.T) {
		f := ParseQuery("tag[]=a")
		assert.Equal(t, []string{"a"}, f["tag"])
		assert.False(t, f.Has("tag[]"))
	})

	t.Run("key without value", func(t *testing.T) {
		f := ParseQuery("flag&x=")
		assert.True(t, f.Has("flag"))
		assert.Equal(t, "", f.Get("flag"))
		assert.Equal(t, "", f.Get("x"))
	})

	t.Run("missing key", func(t *testing.T) {
		f := ParseQuery("a=1")
		assert.Equal(t, "", f.Get("b"))
		assert.Nil(t, f.Values("b"))
	})
}

func TestFieldsAdd(t *testing.T) {
	tests := []struct {
		name   string
		pairs  [][2]string
		expect Fields
	}{
		{
			name:   "scalar",
			pairs:  [][2]string{{"a", "1"}},
			expect: Fields{"a": "1"},
		},
		{
			name:   "second occurrence promotes to array",
			pairs:  [][2]string{{"a", "1"}, {"a", "2"}},
			expect: Fields{"a": []string{"1", "2"}},
		},
		{
			name:   "third occurrence appends",
			pairs:  [][2]string{{"a", "1"}, {"a", "2"}, {"a", "3"}},
			expect: Fields{"a": []string{"1", "2", "3"}},
		},
		{
			name:   "explicit array",
			pairs:  [][2]string{{"a[]", "1"}, {"a[]", "2"}},
			expect: Fields{"a": []string{"1", "2"}},
		},
		{
			name:   "mixed keys",
			pairs:  [][2]string{{"a", "1"}, {"b[]", "x"}, {"c", "y"}},
			expect: Fields{"a": "1", "b": []string{"x"}, "c": "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := make(Fields)
			for _, p := range tt.pairs {
				f.add(p[0], p[1])
			}
			assert.Equal(t, tt.expect, f)
		})
	}

	t.Run("blob values promote to mixed array", func(t *testing.T) {
		f := make(Fields)
		b := &Blob{URL: "blob:x/1"}
		f.add("file", "text")
		f.add("file", b)
		assert.Equal(t, []any{"text", b}, f["file"])
		assert.Equal(t, []string{"text"}, f.Values("file"))
	})
}
