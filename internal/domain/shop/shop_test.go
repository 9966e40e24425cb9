package shop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShop(t *testing.T) {
	t.Run("defaults the name to the type label", func(t *testing.T) {
		s, err := NewShop("", ShopTypeDukaLaVinywaji)
		require.NoError(t, err)
		assert.Equal(t, "Duka la Vinywaji", s.DisplayName())
		assert.True(t, s.IsActive)
	})

	t.Run("keeps explicit names", func(t *testing.T) {
		s, err := NewShop("Mama Neema Stationery", ShopTypeStationery)
		require.NoError(t, err)
		assert.Equal(t, "Mama Neema Stationery", s.DisplayName())
	})

	t.Run("rejects unknown types", func(t *testing.T) {
		_, err := NewShop("x", "bakery")
		assert.Error(t, err)
	})
}
