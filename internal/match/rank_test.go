package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRank(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"Names", "Nme"}, Rank("Name", []string{"Nme", "Names", "Zzz"}, 0))
	assert.Equal(t, []string{"Names"}, Rank("Name", []string{"Nme", "Names", "Zzz"}, 1))
	assert.Equal(t, []string{"CustomerNam"}, Rank("CustomerName", []string{"OrderID", "CustomerNam"}, 5))
	assert.Empty(t, Rank("Name", nil, 3))
}
