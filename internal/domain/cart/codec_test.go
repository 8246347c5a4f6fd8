package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	items := []LineItem{
		{Name: "Margherita (Medium)", UnitPrice: dec("30"), Quantity: 2},
		{Name: "Four Cheese (Small)", UnitPrice: dec("29.95"), Quantity: 1},
	}

	decoded, ok := decodeItems(encodeItems(items))
	require.True(t, ok)
	require.Len(t, decoded, 2)
	for i := range items {
		assert.Equal(t, items[i].Name, decoded[i].Name)
		assert.True(t, items[i].UnitPrice.Equal(decoded[i].UnitPrice))
		assert.Equal(t, items[i].Quantity, decoded[i].Quantity)
	}
}

func TestDecodeItems_UnknownFieldsSkipped(t *testing.T) {
	// Extra fields from an older writer are tolerated.
	data := `[{"name":"Margherita (Medium)","price":30,"quantity":1,"addedAt":"2024-01-01"}]`

	decoded, ok := decodeItems([]byte(data))
	require.True(t, ok)
	require.Len(t, decoded, 1)
	assert.Equal(t, "Margherita (Medium)", decoded[0].Name)
}

func TestEncodeItems_Empty(t *testing.T) {
	assert.Equal(t, "[]", string(encodeItems(nil)))
}
