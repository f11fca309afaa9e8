package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/roadwatch/warning-service/internal/domain/entity"
	repo "github.com/roadwatch/warning-service/internal/domain/repository"
	"github.com/roadwatch/warning-service/internal/observability"
	"github.com/roadwatch/warning-service/pkg/timeutil"
)

// ErrNotOwner is returned when an update targets a record the requesting
// user did not originally report. An absent record yields the same error, so
// callers cannot probe for record existence.
var ErrNotOwner = errors.New("not the original reporter")

// WeatherFetcher is the black-box weather lookup used to annotate query
// results. Nil disables annotation.
type WeatherFetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (string, error)
}

// WarningService is the warning store: it owns all reads and writes of
// warning records and enforces edit ownership.
type WarningService struct {
	Repo    repo.WarningRepository
	Weather WeatherFetcher
	Clock   clockwork.Clock
	Logger  *logrus.Logger
	Metrics *observability.Metrics

	ES      *elasticsearch.Client
	ESIndex string
}

func NewWarningService(r repo.WarningRepository, weather WeatherFetcher, clock clockwork.Clock, logger *logrus.Logger, metrics *observability.Metrics, es *elasticsearch.Client, esIndex string) *WarningService {
	return &WarningService{
		Repo:    r,
		Weather: weather,
		Clock:   clock,
		Logger:  logger,
		Metrics: metrics,
		ES:      es,
		ESIndex: esIndex,
	}
}

// SubmitInput carries the validated fields of a warning submission. Sent is
// UTC epoch milliseconds, already decoded from the wire format.
type SubmitInput struct {
	Nickname    string
	Latitude    float64
	Longitude   float64
	Sent        int64
	DangerType  entity.DangerType
	AreaCode    *string
	PhoneNumber *string
}

// UpdateInput fully replaces the mutable fields of an existing record.
type UpdateInput struct {
	SubmitInput
	ID           int64
	UpdateReason string
}

// Submit stores a new warning. The reporter is the authenticated caller,
// never taken from the request body.
func (s *WarningService) Submit(ctx context.Context, in SubmitInput, reporter string) (int64, error) {
	w := &entity.WarningRecord{
		Nickname:    in.Nickname,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Sent:        in.Sent,
		DangerType:  in.DangerType,
		AreaCode:    in.AreaCode,
		PhoneNumber: in.PhoneNumber,
		Sender:      reporter,
	}
	id, err := s.Repo.Insert(ctx, w)
	if err != nil {
		s.countStorageError()
		return 0, err
	}

	if s.Metrics != nil {
		s.Metrics.Submissions.Inc()
	}
	s.Logger.WithFields(logrus.Fields{"id": id, "reporter": reporter, "dangertype": in.DangerType}).Info("warning submitted")

	_ = s.indexWarning(ctx, w)
	return id, nil
}

// Update overwrites a record after establishing that requestingUser is its
// original reporter. The record's edited state (updatereason, modified)
// becomes visible to future reads.
func (s *WarningService) Update(ctx context.Context, in UpdateInput, requestingUser string) error {
	owns, err := s.Repo.IsSender(ctx, in.ID, requestingUser)
	if err != nil {
		s.countStorageError()
		return err
	}
	if !owns {
		return ErrNotOwner
	}

	modified := s.Clock.Now().UnixMilli()
	reason := in.UpdateReason
	w := &entity.WarningRecord{
		ID:           in.ID,
		Nickname:     in.Nickname,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Sent:         in.Sent,
		DangerType:   in.DangerType,
		AreaCode:     in.AreaCode,
		PhoneNumber:  in.PhoneNumber,
		UpdateReason: &reason,
		Modified:     &modified,
	}
	if err := s.Repo.Update(ctx, w); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Row vanished between the ownership check and the write; fail
			// closed the same way as a foreign record.
			return ErrNotOwner
		}
		s.countStorageError()
		return err
	}

	if s.Metrics != nil {
		s.Metrics.Updates.Inc()
	}
	s.Logger.WithFields(logrus.Fields{"id": in.ID, "reporter": requestingUser}).Info("warning updated")
	return nil
}

// IsSender reports whether the record exists and belongs to username.
func (s *WarningService) IsSender(ctx context.Context, id int64, username string) (bool, error) {
	return s.Repo.IsSender(ctx, id, username)
}

func (s *WarningService) All(ctx context.Context) ([]entity.WarningRecord, error) {
	records, err := s.Repo.All(ctx)
	if err != nil {
		s.countStorageError()
		return nil, err
	}
	s.countQuery("all")
	s.annotateWeather(ctx, records)
	return records, nil
}

// ByReporter filters on the display nickname, not the authenticated sender.
// Nicknames are not unique across login users, so results may mix records
// from distinct authors; this matches what existing clients send and expect.
func (s *WarningService) ByReporter(ctx context.Context, nickname string) ([]entity.WarningRecord, error) {
	records, err := s.Repo.ByNickname(ctx, nickname)
	if err != nil {
		s.countStorageError()
		return nil, err
	}
	s.countQuery("user")
	s.annotateWeather(ctx, records)
	return records, nil
}

// ByTimeRange returns records with start <= sent <= end. An inverted range
// yields an empty result, not an error.
func (s *WarningService) ByTimeRange(ctx context.Context, start, end int64) ([]entity.WarningRecord, error) {
	if start > end {
		s.countQuery("time")
		return []entity.WarningRecord{}, nil
	}
	records, err := s.Repo.ByTimeRange(ctx, start, end)
	if err != nil {
		s.countStorageError()
		return nil, err
	}
	s.countQuery("time")
	s.annotateWeather(ctx, records)
	return records, nil
}

func (s *WarningService) ByBoundingBox(ctx context.Context, upLat, downLat, upLon, downLon float64) ([]entity.WarningRecord, error) {
	records, err := s.Repo.ByBoundingBox(ctx, upLat, downLat, upLon, downLon)
	if err != nil {
		s.countStorageError()
		return nil, err
	}
	s.countQuery("location")
	s.annotateWeather(ctx, records)
	return records, nil
}

// annotateWeather attaches current conditions to each record, best-effort.
// A failed lookup leaves the record unannotated.
func (s *WarningService) annotateWeather(ctx context.Context, records []entity.WarningRecord) {
	if s.Weather == nil {
		return
	}
	for i := range records {
		info, err := s.Weather.Fetch(ctx, records[i].Latitude, records[i].Longitude)
		if err != nil {
			s.Logger.WithError(err).WithField("id", records[i].ID).Debug("weather lookup failed")
			continue
		}
		records[i].Weather = info
	}
}

func (s *WarningService) indexWarning(ctx context.Context, w *entity.WarningRecord) error {
	if s.ES == nil || s.ESIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         w.ID,
		"nickname":   w.Nickname,
		"latitude":   w.Latitude,
		"longitude":  w.Longitude,
		"sent":       timeutil.FormatTimestamp(w.Sent),
		"dangertype": w.DangerType,
		"sender":     w.Sender,
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      s.ESIndex,
		DocumentID: strconv.FormatInt(w.ID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("id", w.ID).Warn("es index failed")
		return fmt.Errorf("index warning: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("id", w.ID).Warn("es index response error")
	}
	return nil
}

func (s *WarningService) countQuery(kind string) {
	if s.Metrics != nil {
		s.Metrics.Queries.WithLabelValues(kind).Inc()
	}
}

func (s *WarningService) countStorageError() {
	if s.Metrics != nil {
		s.Metrics.StorageErrors.Inc()
	}
}
