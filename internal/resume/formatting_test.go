package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormattingCSS(t *testing.T) {
	content := []byte(`{"text":"x","formatting":{
		"textColor":"#111111",
		"backgroundColor":"transparent",
		"fontFamily":"Georgia",
		"fontSize":"14",
		"fontWeight":"bold",
		"textAlign":"center",
		"padding":8,
		"margin":0,
		"borderWidth":1,
		"borderRadius":4
	}}`)

	css := ParseFormatting(content).CSS()
	assert.Equal(t,
		"color: #111111; font-family: Georgia; font-size: 14px; font-weight: bold; text-align: center; padding: 8px; border: 1px solid #d1d5db; border-radius: 4px",
		css)
}

func TestFormattingBackgroundAndMissing(t *testing.T) {
	assert.Equal(t, "background-color: #fafafa", ParseFormatting([]byte(`{"formatting":{"backgroundColor":"#fafafa"}}`)).CSS())
	assert.Empty(t, ParseFormatting([]byte(`{"text":"x"}`)).CSS())
	assert.Empty(t, ParseFormatting([]byte(`{"formatting":"bold"}`)).CSS())
	assert.Empty(t, ParseFormatting(nil).CSS())
}

func TestFormattingDropsUnsafeValues(t *testing.T) {
	content := []byte(`{"formatting":{"textColor":"red; position: fixed","fontFamily":"x\"><script>","backgroundColor":"url(http://evil)","fontWeight":"600"}}`)
	assert.Equal(t, "font-weight: 600", ParseFormatting(content).CSS())
}
