package dedupe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRatioBounds(t *testing.T) {
	require.Equal(t, 1.0, Ratio("", ""))
	require.Equal(t, 0.0, Ratio("abc", ""))
	require.Equal(t, 1.0, Ratio("nifty ends higher", "nifty ends higher"))
	require.Equal(t, 0.0, Ratio("aaaa", "bbbb"))
}

func TestRatioSymmetric(t *testing.T) {
	a := "sensex jumps 500 points on earnings"
	b := "sensex jumps 500 points after earnings beat"
	require.Equal(t, Ratio(a, b), Ratio(b, a))
}

func TestRatioNearDuplicate(t *testing.T) {
	a := "nifty 50 closes above 25000 for the first time"
	b := "nifty 50 closes above 25000 for first time"
	require.GreaterOrEqual(t, Ratio(a, b), 0.9)

	c := "rbi keeps repo rate unchanged at policy meet"
	require.Less(t, Ratio(a, c), 0.6)
}

func TestRatioUnicode(t *testing.T) {
	require.Equal(t, 1.0, Ratio("₹500 करोड़", "₹500 करोड़"))
}
