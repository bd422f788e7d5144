package face

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-engine-backend/model"
)

type fakeGroupStore struct {
	groups      []model.FaceGroup
	appearances []model.FaceAppearance
	nextID      uint
}

func (f *fakeGroupStore) GroupsByEmail(string) ([]model.FaceGroup, error) {
	return append([]model.FaceGroup(nil), f.groups...), nil
}

func (f *fakeGroupStore) CreateGroup(group *model.FaceGroup) error {
	f.nextID++
	group.ID = f.nextID
	f.groups = append(f.groups, *group)
	return nil
}

func (f *fakeGroupStore) SaveGroup(group *model.FaceGroup) error {
	for i := range f.groups {
		if f.groups[i].ID == group.ID {
			f.groups[i] = *group
		}
	}
	return nil
}

func (f *fakeGroupStore) CreateAppearance(appearance *model.FaceAppearance) error {
	f.appearances = append(f.appearances, *appearance)
	return nil
}

type fakeLoader struct {
	rec *model.MediaRecord
}

func (f *fakeLoader) GetByID(uint) (*model.MediaRecord, error) {
	return f.rec, nil
}

func newClusterFixture() (*Clusterer, *fakeGroupStore) {
	store := &fakeGroupStore{}
	loader := &fakeLoader{rec: &model.MediaRecord{ID: 1, UserEmail: "user@example.com"}}
	return NewClusterer(store, loader), store
}

func TestClusterGroupsSimilarFaces(t *testing.T) {
	c, store := newClusterFixture()

	c.Cluster(context.Background(), 1, [][]float64{
		{0.10, 0.20, 0.30},
		{0.11, 0.21, 0.31},
	})

	require.Len(t, store.groups, 1)
	assert.Equal(t, 2, store.groups[0].Size)
	assert.Len(t, store.appearances, 2)
}

func TestClusterSeparatesDistinctFaces(t *testing.T) {
	c, store := newClusterFixture()

	c.Cluster(context.Background(), 1, [][]float64{
		{0.1, 0.2, 0.3},
		{5.0, 5.0, 5.0},
	})

	require.Len(t, store.groups, 2)
	assert.Equal(t, 1, store.groups[0].Size)
	assert.Equal(t, 1, store.groups[1].Size)
}

func TestClusterUpdatesCentroid(t *testing.T) {
	c, store := newClusterFixture()

	c.Cluster(context.Background(), 1, [][]float64{{0.0, 0.0}})
	c.Cluster(context.Background(), 1, [][]float64{{0.2, 0.2}})

	require.Len(t, store.groups, 1)
	assert.InDelta(t, 0.1, store.groups[0].Centroid[0], 1e-9)
	assert.InDelta(t, 0.1, store.groups[0].Centroid[1], 1e-9)
}

func TestClusterSkipsMissingRecord(t *testing.T) {
	store := &fakeGroupStore{}
	c := NewClusterer(store, &fakeLoader{rec: nil})

	c.Cluster(context.Background(), 7, [][]float64{{0.1}})

	assert.Empty(t, store.groups)
	assert.Empty(t, store.appearances)
}
