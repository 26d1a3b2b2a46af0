// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

// Package mongostore is the MongoDB implementation of store.Store.
//
// Records live in one collection (districtdatas by default) with a unique
// index on (districtCode, month, year) and a (districtCode, recordDate)
// index serving the date-ordered reads.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tomtom215/mgnrega-dashboard/internal/config"
	"github.com/tomtom215/mgnrega-dashboard/internal/fiscal"
	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
	"github.com/tomtom215/mgnrega-dashboard/internal/metrics"
	"github.com/tomtom215/mgnrega-dashboard/internal/models"
	"github.com/tomtom215/mgnrega-dashboard/internal/store"
)

const (
	backendName       = "mongodb"
	defaultCollection = "districtdatas"
)

var _ store.Store = (*Store)(nil)

// Store persists district records in a MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// New connects to cfg.URI, verifies the connection and ensures indexes.
func New(ctx context.Context, cfg *config.MongoConfig) (*Store, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetRetryWrites(true).
		SetRetryReads(true)

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = defaultCollection
	}
	s := &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(collection),
	}

	if err := s.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logging.Info().
		Str("database", cfg.Database).
		Str("collection", collection).
		Msg("MongoDB store connected")
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "districtCode", Value: 1}, {Key: "month", Value: 1}, {Key: "year", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("district_month_year"),
		},
		{
			Keys:    bson.D{{Key: "districtCode", Value: 1}, {Key: "recordDate", Value: -1}},
			Options: options.Index().SetName("district_record_date"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func observe(operation string, start time.Time, errp *error) {
	err := *errp
	if errors.Is(err, store.ErrNotFound) {
		err = nil
	}
	metrics.RecordStoreOperation(backendName, operation, time.Since(start), err)
}

func naturalKey(code, month string, year int) bson.D {
	return bson.D{
		{Key: "districtCode", Value: code},
		{Key: "month", Value: month},
		{Key: "year", Value: year},
	}
}

// dated matches documents whose recordDate is present and non-null.
var dated = bson.D{{Key: "$ne", Value: nil}}

// byRecordDateDesc orders newest first; missing dates sort last.
var byRecordDateDesc = bson.D{
	{Key: "recordDate", Value: -1},
	{Key: "year", Value: -1},
	{Key: "month", Value: 1},
}

// UpsertRecord inserts rec or replaces the document with the same natural key.
func (s *Store) UpsertRecord(ctx context.Context, rec *models.DistrictRecord) (err error) {
	defer observe("upsert", time.Now(), &err)

	set := bson.D{
		{Key: "districtName", Value: rec.DistrictName},
		{Key: "state", Value: rec.State},
		{Key: "data", Value: rec.Data},
		{Key: "lastUpdated", Value: rec.LastUpdated.UTC()},
	}
	var unset bson.D
	if rec.RecordDate != nil {
		set = append(set, bson.E{Key: "recordDate", Value: rec.RecordDate.UTC()})
	} else {
		unset = append(unset, bson.E{Key: "recordDate", Value: ""})
	}
	if rec.RawData != nil {
		set = append(set, bson.E{Key: "rawData", Value: rec.RawData})
	} else {
		unset = append(unset, bson.E{Key: "rawData", Value: ""})
	}

	update := bson.D{{Key: "$set", Value: set}}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}

	_, err = s.coll.UpdateOne(ctx,
		naturalKey(rec.DistrictCode, rec.Month, rec.Year),
		update,
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert record %s %s %d: %w", rec.DistrictCode, rec.Month, rec.Year, err)
	}
	return nil
}

// Latest returns the district's record with the greatest recordDate.
func (s *Store) Latest(ctx context.Context, districtCode string) (rec *models.DistrictRecord, err error) {
	defer observe("latest", time.Now(), &err)

	filter := bson.D{
		{Key: "districtCode", Value: districtCode},
		{Key: "recordDate", Value: dated},
	}
	var out models.DistrictRecord
	err = s.coll.FindOne(ctx, filter, options.FindOne().SetSort(byRecordDateDesc)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest record: %w", err)
	}
	return &out, nil
}

// History returns records ordered by recordDate descending, undated last.
func (s *Store) History(ctx context.Context, districtCode string, q store.HistoryQuery) (recs []models.DistrictRecord, err error) {
	defer observe("history", time.Now(), &err)

	filter := bson.D{{Key: "districtCode", Value: districtCode}}
	switch {
	case q.From != nil || q.To != nil:
		var rng bson.D
		if q.From != nil {
			rng = append(rng, bson.E{Key: "$gte", Value: q.From.UTC()})
		}
		if q.To != nil {
			rng = append(rng, bson.E{Key: "$lte", Value: q.To.UTC()})
		}
		filter = append(filter, bson.E{Key: "recordDate", Value: rng})
	case !q.IncludeUndated:
		filter = append(filter, bson.E{Key: "recordDate", Value: dated})
	}

	opts := options.Find().SetSort(byRecordDateDesc)
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	recs = make([]models.DistrictRecord, 0)
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return recs, nil
}

// DistinctYears returns the district's stored financial-year start years,
// newest first.
func (s *Store) DistinctYears(ctx context.Context, districtCode string) (years []int, err error) {
	defer observe("distinct_years", time.Now(), &err)

	values, err := s.coll.Distinct(ctx, "year", bson.D{{Key: "districtCode", Value: districtCode}})
	if err != nil {
		return nil, fmt.Errorf("failed to query years: %w", err)
	}

	years = make([]int, 0, len(values))
	for _, v := range values {
		switch y := v.(type) {
		case int32:
			years = append(years, int(y))
		case int64:
			years = append(years, int(y))
		case float64:
			years = append(years, int(y))
		default:
			logging.Warn().Interface("value", v).Msg("Ignoring non-numeric year value")
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

// LatestPerDistrict returns the newest dated record of every district.
func (s *Store) LatestPerDistrict(ctx context.Context) (out map[string]models.DistrictRecord, err error) {
	defer observe("latest_per_district", time.Now(), &err)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "recordDate", Value: dated}}}},
		{{Key: "$sort", Value: bson.D{{Key: "districtCode", Value: 1}, {Key: "recordDate", Value: -1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$districtCode"},
			{Key: "doc", Value: bson.D{{Key: "$first", Value: "$$ROOT"}}},
		}}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$doc"}}}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate latest records: %w", err)
	}
	var recs []models.DistrictRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode latest records: %w", err)
	}

	out = make(map[string]models.DistrictRecord, len(recs))
	for _, r := range recs {
		out[r.DistrictCode] = r
	}
	return out, nil
}

// Stats returns per-district record counts, largest first.
func (s *Store) Stats(ctx context.Context) (stats []models.DistrictStats, err error) {
	defer observe("stats", time.Now(), &err)

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$districtCode"},
			{Key: "recordCount", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "latestUpdate", Value: bson.D{{Key: "$max", Value: "$lastUpdated"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "recordCount", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}
	stats = make([]models.DistrictStats, 0)
	if err := cur.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	return stats, nil
}

// Count returns the total number of stored records.
func (s *Store) Count(ctx context.Context) (n int64, err error) {
	defer observe("count", time.Now(), &err)

	n, err = s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

type undatedDoc struct {
	ID           any    `bson:"_id"`
	DistrictCode string `bson:"districtCode"`
	Month        string `bson:"month"`
	Year         int    `bson:"year"`
}

// BackfillRecordDates fills recordDate for documents that lack it.
// Documents whose month cannot be parsed are logged and left alone.
func (s *Store) BackfillRecordDates(ctx context.Context) (updated int64, err error) {
	defer observe("backfill", time.Now(), &err)

	// {recordDate: null} matches both null and missing.
	cur, err := s.coll.Find(ctx, bson.D{{Key: "recordDate", Value: nil}},
		options.Find().SetProjection(bson.D{
			{Key: "districtCode", Value: 1},
			{Key: "month", Value: 1},
			{Key: "year", Value: 1},
		}))
	if err != nil {
		return 0, fmt.Errorf("failed to query undated records: %w", err)
	}
	var pending []undatedDoc
	if err := cur.All(ctx, &pending); err != nil {
		return 0, fmt.Errorf("failed to decode undated records: %w", err)
	}

	for _, d := range pending {
		date, dErr := fiscal.RecordDateForStartYear(d.Month, d.Year)
		if dErr != nil {
			logging.Warn().
				Str("district_code", d.DistrictCode).
				Str("month", d.Month).
				Int("year", d.Year).
				Err(dErr).
				Msg("Cannot derive record date, leaving record undated")
			continue
		}
		res, err := s.coll.UpdateByID(ctx, d.ID,
			bson.D{{Key: "$set", Value: bson.D{{Key: "recordDate", Value: date}}}})
		if err != nil {
			return updated, fmt.Errorf("failed to backfill %s %s %d: %w", d.DistrictCode, d.Month, d.Year, err)
		}
		updated += res.ModifiedCount
	}

	if updated > 0 {
		logging.Info().Int64("updated", updated).Msg("Backfilled record dates")
	}
	return updated, nil
}

// DeleteAll removes every record.
func (s *Store) DeleteAll(ctx context.Context) (n int64, err error) {
	defer observe("delete_all", time.Now(), &err)

	res, err := s.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete records: %w", err)
	}
	return res.DeletedCount, nil
}

// Ping verifies the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
