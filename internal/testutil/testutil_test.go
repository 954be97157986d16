package testutil_test

import (
	"testing"

	"github.com/paveg/salesclean/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupMemoryTest(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	require.NotNil(t, mem.Allocator)
}

func TestCreateMessySalesDataFrame(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	df := testutil.CreateMessySalesDataFrame(t, mem.Allocator)
	defer df.Release()

	assert.Equal(t, 5, df.Len())
	testutil.AssertDataFrameHasColumns(t, df, []string{"Order Date", " Region ", "Unit Price"})
	assert.Equal(t, []string{"  west ", "East", "east", "WEST", "<null>"}, testutil.Cells(t, df, " Region "))
}

func TestAssertDataFrameEqual(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	a := testutil.ReadCSV(t, "x,y\n1,a\n2,\n", mem.Allocator)
	defer a.Release()
	b := testutil.ReadCSV(t, "x,y\n1,a\n2,\n", mem.Allocator)
	defer b.Release()

	testutil.AssertDataFrameEqual(t, a, b)
}
