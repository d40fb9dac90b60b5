package store

// SQL query constants organized by entity.
// All SQL lives here; PostgresStore methods reference these constants.

// Run queries.
const (
	queryStartRun = `
		INSERT INTO runs (id, listings, started_at)
		VALUES (@id, @listings, now())`

	queryCompleteRun = `
		UPDATE runs SET
			successes = @successes,
			failures = @failures,
			finished_at = now()
		WHERE id = @id`
)

// Outcome queries.
const (
	queryRecordOutcome = `
		INSERT INTO outcomes (
			run_id, identifier, platform, outcome, listing_url, reason, posted_at
		) VALUES (
			@run_id, @identifier, @platform, @outcome, @listing_url, @reason, now()
		)
		RETURNING id, posted_at`

	queryLastSuccessURL = `
		SELECT listing_url
		FROM outcomes
		WHERE identifier = $1
		  AND platform = $2
		  AND listing_url <> ''
		ORDER BY posted_at DESC
		LIMIT 1`
)
