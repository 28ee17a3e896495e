package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"visitgate/internal/facility/models"
	id "visitgate/pkg/domain"
	"visitgate/pkg/platform/sentinel"
)

const (
	facilityKeyPrefix = "visitgate:facility:"
	facilityIndexKey  = "visitgate:facilities"
)

// RedisStore keeps facility configuration in one Redis hash per facility plus
// an index set, so every process sees capacity and window changes immediately.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func facilityKey(facilityID id.FacilityID) string {
	return facilityKeyPrefix + facilityID.String()
}

func (s *RedisStore) Save(ctx context.Context, f *models.Facility) error {
	windows, err := json.Marshal(f.VisitingWindows)
	if err != nil {
		return fmt.Errorf("marshal visiting windows: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, facilityKey(f.ID), map[string]any{
			"name":         f.Name,
			"max_capacity": f.MaxCapacity,
			"timezone":     f.Timezone,
			"windows":      string(windows),
		})
		pipe.SAdd(ctx, facilityIndexKey, f.ID.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("save facility: %w", err)
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, facilityID id.FacilityID) (*models.Facility, error) {
	fields, err := s.client.HGetAll(ctx, facilityKey(facilityID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load facility: %w", err)
	}
	if len(fields) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return decodeFacility(facilityID, fields)
}

func (s *RedisStore) List(ctx context.Context) ([]*models.Facility, error) {
	ids, err := s.client.SMembers(ctx, facilityIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	out := make([]*models.Facility, 0, len(ids))
	for _, raw := range ids {
		u, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		f, err := s.FindByID(ctx, id.FacilityID(u))
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func decodeFacility(facilityID id.FacilityID, fields map[string]string) (*models.Facility, error) {
	capacity, err := strconv.Atoi(fields["max_capacity"])
	if err != nil {
		return nil, fmt.Errorf("decode facility capacity: %w", err)
	}
	var windows []models.Window
	if raw := fields["windows"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &windows); err != nil {
			return nil, fmt.Errorf("decode visiting windows: %w", err)
		}
	}
	return &models.Facility{
		ID:              facilityID,
		Name:            fields["name"],
		MaxCapacity:     capacity,
		Timezone:        fields["timezone"],
		VisitingWindows: windows,
	}, nil
}
