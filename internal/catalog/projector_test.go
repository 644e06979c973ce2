package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(id, sku, name string, qty, price int) Row {
	return Row{ID: id, SKU: sku, DisplayName: name, Quantity: qty, UnitPriceCents: price}
}

func TestProject_GroupsByDisplayName(t *testing.T) {
	rows := []Row{
		row("i1", "X1", "A", 2, 1000),
		row("i2", "X2", "A", 3, 1200),
		row("i3", "Y1", "B", 5, 800),
	}

	entries, totalPages := Project(rows, 1, 24)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, totalPages)

	// B has fewer variants, so it sorts into the earlier tier
	b := entries[0]
	assert.Equal(t, "B", b.DisplayName)
	assert.Equal(t, 5, b.Quantity)
	assert.Equal(t, 1, b.VariantCount)
	assert.Equal(t, "i3", b.RepresentativeID)

	a := entries[1]
	assert.Equal(t, "A", a.DisplayName)
	assert.Equal(t, 5, a.Quantity)
	assert.Equal(t, 2, a.VariantCount)
	assert.Equal(t, []string{"X1", "X2"}, a.SKUs)
	assert.Equal(t, 1000, a.MinPriceCents)
	assert.Equal(t, 1200, a.MaxPriceCents)
	assert.Equal(t, "i1", a.RepresentativeID, "smallest SKU supplies the representative")
}

func TestProject_PageSizeOne_LowVariantFirst(t *testing.T) {
	rows := []Row{
		row("i1", "X1", "A", 2, 1000),
		row("i2", "X2", "A", 3, 1000),
		row("i3", "Y1", "B", 5, 800),
	}

	entries, totalPages := Project(rows, 1, 1)
	require.Len(t, entries, 1)
	assert.Equal(t, "B", entries[0].DisplayName)
	assert.Equal(t, 2, totalPages)

	entries, _ = Project(rows, 2, 1)
	require.Len(t, entries, 1)
	assert.Equal(t, "A", entries[0].DisplayName)
}

func TestProject_TierOrdering(t *testing.T) {
	// one entry per tier, with names chosen to fight the tier order
	rows := []Row{
		row("a1", "S1", "Alpha", 1, 100), row("a2", "S2", "Alpha", 1, 100),
		row("a3", "S3", "Alpha", 1, 100), row("a4", "S4", "Alpha", 1, 100), // 4 variants
		row("b1", "T1", "Bravo", 1, 100), row("b2", "T2", "Bravo", 1, 100),
		row("b3", "T3", "Bravo", 1, 100), // 3 variants
		row("c1", "U1", "Charlie", 1, 100), row("c2", "U2", "Charlie", 1, 100), // 2 variants
		row("d1", "V1", "Delta", 1, 100), // 1 variant
	}

	entries, _ := Project(rows, 1, 24)
	require.Len(t, entries, 4)
	names := []string{entries[0].DisplayName, entries[1].DisplayName, entries[2].DisplayName, entries[3].DisplayName}
	assert.Equal(t, []string{"Delta", "Charlie", "Bravo", "Alpha"}, names)
}

func TestProject_SortsWithinTierByName(t *testing.T) {
	rows := []Row{
		row("z1", "Z1", "Zinc", 1, 100),
		row("g1", "G1", "Grease", 1, 100),
		row("o1", "O1", "Oil", 1, 100),
	}

	entries, _ := Project(rows, 1, 24)
	require.Len(t, entries, 3)
	assert.Equal(t, "Grease", entries[0].DisplayName)
	assert.Equal(t, "Oil", entries[1].DisplayName)
	assert.Equal(t, "Zinc", entries[2].DisplayName)
}

func TestProject_ExcludesOutOfStockRows(t *testing.T) {
	rows := []Row{
		row("i1", "X1", "A", 0, 1000),
		row("i2", "X2", "A", 3, 1200),
	}
	entries, _ := Project(rows, 1, 24)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].VariantCount)
	assert.Equal(t, 3, entries[0].Quantity)
	assert.Equal(t, "i2", entries[0].RepresentativeID)
}

func TestProject_EmptyInput(t *testing.T) {
	entries, totalPages := Project(nil, 1, 24)
	assert.Empty(t, entries)
	assert.Equal(t, 0, totalPages)
}

func TestProject_PageBeyondRange(t *testing.T) {
	rows := []Row{row("i1", "X1", "A", 1, 100)}
	entries, totalPages := Project(rows, 5, 24)
	assert.Empty(t, entries)
	assert.Equal(t, 1, totalPages)
}

func TestProject_DuplicateSKURowsCountAsVariants(t *testing.T) {
	rows := []Row{
		row("i1", "X1", "A", 2, 100),
		row("i2", "X1", "A", 3, 100),
	}
	entries, _ := Project(rows, 1, 24)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].VariantCount)
	assert.Equal(t, []string{"X1"}, entries[0].SKUs, "SKU set is distinct")
	assert.Equal(t, 5, entries[0].Quantity)
}
