package face

import (
	"context"
	"log/slog"
	"math"

	"media-engine-backend/model"
)

// matchDistance is the euclidean threshold under which two encodings
// count as the same person.
const matchDistance = 0.6

// GroupStore is the face-group persistence the clusterer needs.
type GroupStore interface {
	GroupsByEmail(email string) ([]model.FaceGroup, error)
	CreateGroup(group *model.FaceGroup) error
	SaveGroup(group *model.FaceGroup) error
	CreateAppearance(appearance *model.FaceAppearance) error
}

// RecordLoader resolves the owning user of a processed media record.
type RecordLoader interface {
	GetByID(id uint) (*model.MediaRecord, error)
}

// Clusterer assigns detected faces to per-user groups by greedy
// nearest-centroid matching. It runs after a record completed
// processing; failures are logged and never affect the record.
type Clusterer struct {
	groups  GroupStore
	records RecordLoader
}

func NewClusterer(groups GroupStore, records RecordLoader) *Clusterer {
	return &Clusterer{groups: groups, records: records}
}

func (c *Clusterer) Cluster(_ context.Context, mediaID uint, encodings [][]float64) {
	rec, err := c.records.GetByID(mediaID)
	if err != nil || rec == nil {
		slog.Warn("Skipping face clustering, record unavailable", "media_id", mediaID, "err", err)
		return
	}

	groups, err := c.groups.GroupsByEmail(rec.UserEmail)
	if err != nil {
		slog.Error("Failed to load face groups", "media_id", mediaID, "err", err)
		return
	}

	for _, encoding := range encodings {
		if len(encoding) == 0 {
			continue
		}
		group := c.assign(rec.UserEmail, groups, encoding)
		if group == nil {
			continue
		}
		if err := c.groups.CreateAppearance(&model.FaceAppearance{
			GroupID: group.ID,
			MediaID: mediaID,
		}); err != nil {
			slog.Error("Failed to record face appearance",
				"media_id", mediaID,
				"group_id", group.ID,
				"err", err,
			)
		}
		// a fresh group is a candidate for the remaining encodings too
		if group.Size == 1 {
			groups = append(groups, *group)
		}
	}
}

// assign finds the nearest existing group within matchDistance and
// folds the encoding into its centroid, or opens a new group.
func (c *Clusterer) assign(email string, groups []model.FaceGroup, encoding []float64) *model.FaceGroup {
	best := -1
	bestDist := math.MaxFloat64
	for i := range groups {
		if len(groups[i].Centroid) != len(encoding) {
			continue
		}
		if d := distance(groups[i].Centroid, encoding); d < bestDist {
			best = i
			bestDist = d
		}
	}

	if best >= 0 && bestDist < matchDistance {
		group := &groups[best]
		n := float64(group.Size)
		for i := range group.Centroid {
			group.Centroid[i] = (group.Centroid[i]*n + encoding[i]) / (n + 1)
		}
		group.Size++
		if err := c.groups.SaveGroup(group); err != nil {
			slog.Error("Failed to update face group", "group_id", group.ID, "err", err)
			return nil
		}
		return group
	}

	group := &model.FaceGroup{
		UserEmail: email,
		Centroid:  append(model.Float64List(nil), encoding...),
		Size:      1,
	}
	if err := c.groups.CreateGroup(group); err != nil {
		slog.Error("Failed to create face group", "err", err)
		return nil
	}
	return group
}

func distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
