package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"torgmailru/client/internal/normalize"
)

func mustNormalize(t *testing.T, raw string) normalize.Node {
	t.Helper()
	n, err := normalize.NormalizeJSON([]byte(raw))
	require.NoError(t, err)
	return n
}

func TestDecode_Offer(t *testing.T) {
	node := mustNormalize(t, `{
		"Id": 987654321,
		"Name": "Смартфон   X",
		"ModelId": 42,
		"SellerId": 7,
		"Price": "19990.50",
		"Description": "<p>Новый</p><ul><li>гарантия</li><li>доставка &amp; самовывоз</li></ul>",
		"UnknownField": {"Nested": true}
	}`)

	offer, err := Decode[Offer](node)
	require.NoError(t, err)

	assert.Equal(t, "987654321", offer.ID)
	assert.Equal(t, "Смартфон X", offer.Name)
	assert.Equal(t, int64(42), offer.ModelID)
	assert.Equal(t, int64(7), offer.SellerID)
	assert.Equal(t, 19990.50, offer.Price)
	assert.Equal(t, "Новый гарантия доставка & самовывоз", offer.PlainDescription())
}

func TestDecode_ModelWithNestedPrice(t *testing.T) {
	node := mustNormalize(t, `{"Id": 1, "Name": "M", "Price": {"Min": 100, "Max": 250.5, "Currency": "RUR"}, "Rating": 4.5}`)

	model, err := Decode[Model](node)
	require.NoError(t, err)
	assert.Equal(t, Price{Min: 100, Max: 250.5, Currency: "RUR"}, model.Price)
	assert.Equal(t, 4.5, model.Rating)
}

func TestDecode_Region(t *testing.T) {
	node := mustNormalize(t, `{"Id": 213, "Name": "Москва", "HasChildren": true, "ParentId": 1}`)

	region, err := Decode[Region](node)
	require.NoError(t, err)
	assert.Equal(t, Region{ID: 213, Name: "Москва", HasChildren: true, ParentID: 1}, region)
}

func TestDecode_NotAnObject(t *testing.T) {
	_, err := Decode[Category](mustNormalize(t, `[1, 2]`))
	assert.Error(t, err)
}

func TestDecode_TypeMismatch(t *testing.T) {
	_, err := Decode[Category](mustNormalize(t, `{"Id": {"nested": 1}}`))
	assert.Error(t, err)
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "just  text", "just text"},
		{"line breaks", "one<br>two<br/>three", "one two three"},
		{"script removed", "<div>visible</div><script>var x = 1;</script>", "visible"},
		{"entity", "Tom &amp; Jerry", "Tom & Jerry"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}
