package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskReference(t *testing.T) {
	assert.Equal(t, "", MaskReference(""))
	assert.Equal(t, "****", MaskReference("abcd"))
	assert.Equal(t, "****6789", MaskReference("123456789"))
	assert.Equal(t, "pay_****3456", MaskReference("pay_QWERTY123456"))
	assert.Equal(t, "order_****7890", MaskReference("order_ABC1234567890"))
	assert.Equal(t, "****cdef", MaskReference("manual-abcdef"))
}

func TestMaskMetadataMasksOnlyReferenceKeys(t *testing.T) {
	masked := MaskMetadata(map[string]any{
		"payment_id": "pay_QWERTY123456",
		"donor_name": "Asha Rao",
		"amount":     int64(5000),
		"nested": map[string]any{
			"transaction_reference": "manual-abcdef",
			"campaign_slug":         "flood-relief-2025",
		},
		"Signature": []any{"deadbeefcafe"},
	})

	assert.Equal(t, "pay_****3456", masked["payment_id"])
	assert.Equal(t, "Asha Rao", masked["donor_name"])
	assert.Equal(t, int64(5000), masked["amount"])

	nested := masked["nested"].(map[string]any)
	assert.Equal(t, "****cdef", nested["transaction_reference"])
	assert.Equal(t, "flood-relief-2025", nested["campaign_slug"])

	// Key matching is case insensitive; list items under a reference
	// key are masked one by one.
	sigs := masked["Signature"].([]any)
	assert.Equal(t, "****cafe", sigs[0])
}

func TestMaskMetadataEmpty(t *testing.T) {
	assert.Nil(t, MaskMetadata(nil))
	assert.Nil(t, MaskMetadata(map[string]any{}))
	assert.Nil(t, MaskMetadata(map[string]any{"  ": "ignored"}))
}
