package theme

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/theirongolddev/tally/internal/model"
)

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		th, ok := Lookup(name)
		assert.True(t, ok, name)
		assert.Equal(t, name, th.Name)
	}

	_, ok := Lookup("nope")
	assert.False(t, ok)
	assert.Equal(t, FlexokiDark.Name, ByName("nope").Name, "unknown names fall back to the default")
}

func TestSetActive(t *testing.T) {
	t.Cleanup(func() { SetActive(FlexokiDark.Name) })

	SetActive("solarized-light")
	assert.Equal(t, SolarizedLight.Name, Active.Name)

	SetActive("missing")
	assert.Equal(t, FlexokiDark.Name, Active.Name)
}

func TestSemanticColors(t *testing.T) {
	th := GruvboxDark

	assert.Equal(t, th.Green, th.StatusColor(model.StatusOK))
	assert.Equal(t, th.Yellow, th.StatusColor(model.StatusWarning))
	assert.Equal(t, th.Red, th.StatusColor(model.StatusExceeded))

	assert.Equal(t, th.Green, th.FlowColor(model.Income))
	assert.Equal(t, th.Red, th.FlowColor(model.Expense))

	assert.Equal(t, th.Green, th.SignColor(decimal.NewFromInt(5)))
	assert.Equal(t, th.Red, th.SignColor(decimal.NewFromInt(-5)))
	assert.Equal(t, th.TextPrimary, th.SignColor(decimal.Zero))
}
