// Package search keeps active user profiles in Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-certification/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// userDoc never carries the certification code.
type userDoc struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Nickname    string `json:"nickname"`
	Address     string `json:"address"`
	Status      string `json:"status"`
	LastLoginAt *int64 `json:"last_login_at,omitempty"`
}

type UserIndex struct {
	es     *elasticsearch.Client
	index  string
	logger *logrus.Logger
}

func NewUserIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *UserIndex {
	return &UserIndex{es: es, index: index, logger: logger}
}

func (x *UserIndex) Index(ctx context.Context, u *entity.User) error {
	b, err := json.Marshal(userDoc{
		ID:          u.ID,
		Email:       u.Email,
		Nickname:    u.Nickname,
		Address:     u.Address,
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      x.index,
		DocumentID: strconv.FormatInt(u.ID, 10),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("es index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

// Search runs a multi_match over email, nickname and address restricted to ACTIVE documents.
func (x *UserIndex) Search(ctx context.Context, q string, size int) ([]*entity.User, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"email^2", "nickname", "address"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"status": string(entity.UserStatusActive)},
				},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, fmt.Errorf("es search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		if x.logger != nil {
			x.logger.WithField("status", res.Status()).Warn("es search response error")
		}
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source userDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]*entity.User, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		d := h.Source
		out = append(out, &entity.User{
			ID:          d.ID,
			Email:       d.Email,
			Nickname:    d.Nickname,
			Address:     d.Address,
			Status:      entity.UserStatus(d.Status),
			LastLoginAt: d.LastLoginAt,
		})
	}
	return out, nil
}
