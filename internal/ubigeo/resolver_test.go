package ubigeo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestResolver(t *testing.T) *FileResolver {
	t.Helper()
	r, err := NewFileResolver("testdata")
	require.NoError(t, err)
	return r
}

func TestFileResolverDepartment(t *testing.T) {
	r := loadTestResolver(t)

	dep, ok := r.Department("01")
	require.True(t, ok)
	assert.Equal(t, "AMAZONAS", dep.Name)
	assert.Equal(t, "39", dep.ID)

	_, ok = r.Department("99")
	assert.False(t, ok)
}

func TestFileResolverProvinceMatchesTrailingDigits(t *testing.T) {
	r := loadTestResolver(t)

	// Province codes are 4 digits; only the trailing two select the entry
	// within the department.
	prov, ok := r.Province("39", "0102")
	require.True(t, ok)
	assert.Equal(t, "BAGUA", prov.Name)

	_, ok = r.Province("39", "0199")
	assert.False(t, ok)
}

func TestFileResolverDistrictMatchesTrailingDigits(t *testing.T) {
	r := loadTestResolver(t)

	dist, ok := r.District("1348", "150122")
	require.True(t, ok)
	assert.Equal(t, "MIRAFLORES", dist.Name)

	_, ok = r.District("1348", "150199")
	assert.False(t, ok)
}

func TestNamesResolvesFullChain(t *testing.T) {
	r := loadTestResolver(t)

	dep, prov, dist := Names(r, "15", "1501", "150101")
	require.NotNil(t, dep)
	require.NotNil(t, prov)
	require.NotNil(t, dist)
	assert.Equal(t, "LIMA", *dep)
	assert.Equal(t, "LIMA", *prov)
	assert.Equal(t, "LIMA", *dist)
}

func TestNamesUnknownDepartmentBreaksChain(t *testing.T) {
	r := loadTestResolver(t)

	dep, prov, dist := Names(r, "99", "9901", "990101")
	assert.Nil(t, dep)
	assert.Nil(t, prov)
	assert.Nil(t, dist)
}

func TestNamesUnknownProvinceKeepsDepartment(t *testing.T) {
	r := loadTestResolver(t)

	dep, prov, dist := Names(r, "01", "0199", "019901")
	require.NotNil(t, dep)
	assert.Equal(t, "AMAZONAS", *dep)
	assert.Nil(t, prov)
	assert.Nil(t, dist)
}

func TestNamesUnknownDistrictKeepsParents(t *testing.T) {
	r := loadTestResolver(t)

	dep, prov, dist := Names(r, "01", "0101", "010199")
	require.NotNil(t, dep)
	require.NotNil(t, prov)
	assert.Nil(t, dist)
}

func TestRawServesDictionaryBytes(t *testing.T) {
	r := loadTestResolver(t)

	data, ok := r.Raw("departamentos")
	require.True(t, ok)
	assert.Contains(t, string(data), "AMAZONAS")

	_, ok = r.Raw("missing")
	assert.False(t, ok)
}
