package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// SQLEventRepo implements EventRepo on the llm_request_events table.
type SQLEventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
	now func() time.Time
}

func (r *SQLEventRepo) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// AppendLLMRequest records one model call.
func (r *SQLEventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().Insert(eventsTableName).
		Columns(columnNames(eventsColumns[1:])...).
		Values(
			seqNum, r.clock().UnixMilli(), data.Provider, data.Model, data.Purpose, data.RunID,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage,
			data.RequestBody, data.ResponseBody,
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save model request event: %w", err)
	}
	return nil
}

func (r *SQLEventRepo) selectEvents() *entsql.Selector {
	return builder().Select(columnNames(eventsColumns)...).From(entsql.Table(eventsTableName))
}

// QueryLLMEvents returns events newest first.
func (r *SQLEventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	sel := r.selectEvents()
	if opts.Purpose != "" {
		sel.Where(entsql.EQ("purpose", opts.Purpose))
	}
	if opts.RunID != "" {
		sel.Where(entsql.EQ("run_id", opts.RunID))
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	var events []LLMEvent
	err := r.query(ctx, sel, func(rows *entsql.Rows) error {
		e, err := scanEvent(rows)
		if err != nil {
			return err
		}
		events = append(events, *e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query model events: %w", err)
	}
	return events, nil
}

// GetLLMEvent returns the event with the given id, or nil if absent.
func (r *SQLEventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	sel := r.selectEvents().Where(entsql.EQ("id", id)).Limit(1)

	var found *LLMEvent
	err := r.query(ctx, sel, func(rows *entsql.Rows) error {
		e, err := scanEvent(rows)
		found = e
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get model event %d: %w", id, err)
	}
	return found, nil
}

func coalesceSum(column string) string {
	return "COALESCE(" + entsql.Sum(column) + ", 0)"
}

// LLMUsageByPurpose aggregates events per purpose label.
func (r *SQLEventRepo) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	sel := builder().
		Select(
			"purpose",
			entsql.Count("*"),
			"SUM(CASE WHEN `success` THEN 0 ELSE 1 END)",
			coalesceSum("input_tokens"),
			coalesceSum("output_tokens"),
			"CAST(COALESCE("+entsql.Avg("latency_ms")+", 0) AS INTEGER)",
		).
		From(entsql.Table(eventsTableName)).
		GroupBy("purpose").
		OrderBy(entsql.Desc(entsql.Count("*")), "purpose")

	var out []PurposeUsage
	err := r.query(ctx, sel, func(rows *entsql.Rows) error {
		var u PurposeUsage
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.Failures, &u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	return out, nil
}

// LLMUsageByModel aggregates events per model.
func (r *SQLEventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	sel := builder().
		Select("model", entsql.Count("*"), coalesceSum("input_tokens"), coalesceSum("output_tokens")).
		From(entsql.Table(eventsTableName)).
		GroupBy("model").
		OrderBy("model")

	var out []ModelUsage
	err := r.query(ctx, sel, func(rows *entsql.Rows) error {
		var u ModelUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	return out, nil
}

// PruneLLMEvents deletes all but the keep most recent events and
// returns the number of rows removed.
func (r *SQLEventRepo) PruneLLMEvents(ctx context.Context, keep int) (int64, error) {
	keep = max(keep, 0)
	newest := builder().
		Select("sequence").
		From(entsql.Table(eventsTableName)).
		OrderBy(entsql.Desc("sequence")).
		Limit(keep)
	query, args := builder().Delete(eventsTableName).
		Where(entsql.NotIn("sequence", newest)).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, fmt.Errorf("prune model events: %w", err)
	}
	return res.RowsAffected()
}

// query runs sel and calls scan once per row.
func (r *SQLEventRepo) query(ctx context.Context, sel *entsql.Selector, scan func(*entsql.Rows) error) error {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(&rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func scanEvent(rows *entsql.Rows) (*LLMEvent, error) {
	var (
		e         LLMEvent
		createdAt int64
	)
	err := rows.Scan(&e.ID, &e.Sequence, &createdAt, &e.Provider, &e.Model, &e.Purpose, &e.RunID,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage,
		&e.RequestBody, &e.ResponseBody)
	if err != nil {
		return nil, fmt.Errorf("scan model event: %w", err)
	}
	e.Timestamp = time.UnixMilli(createdAt).UTC()
	return &e, nil
}
