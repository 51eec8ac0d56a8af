package services

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"notsolong/internal/models"
)

// Vote sentiment values. Retract removes an existing vote; stored vote
// rows only ever hold Upvote or Downvote.
const (
	Downvote = -1
	Retract  = 0
	Upvote   = 1
)

var (
	// ErrInvalidVote means the requested value is outside {-1, 0, 1}.
	ErrInvalidVote = errors.New("vote value must be -1, 0 or 1")
	// ErrRecapNotFound means the target recap does not exist.
	ErrRecapNotFound = errors.New("recap not found")
	// ErrUserNotFound means the voting user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrVoteConflict is a transient unique-key or serialization
	// conflict. The call rolled back completely and is safe to retry.
	ErrVoteConflict = errors.New("conflicting vote write, retry")
)

// VoteService is the only writer of vote rows and of recap
// score/upvotes/downvotes counters. No other code path may touch them.
type VoteService struct {
	db *gorm.DB
}

func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{db: db}
}

// counterDelta is the signed adjustment one vote transition applies to
// a recap's counters.
type counterDelta struct {
	score     int
	upvotes   int
	downvotes int
}

func (d counterDelta) zero() bool {
	return d.score == 0 && d.upvotes == 0 && d.downvotes == 0
}

// transitionDelta computes the counter adjustment when a user's vote
// moves from old to next. Retract (0) stands for "no row" on either
// side: the old value contributes negatively, the next one positively.
func transitionDelta(old, next int) counterDelta {
	var d counterDelta
	switch old {
	case Upvote:
		d.score--
		d.upvotes--
	case Downvote:
		d.score++
		d.downvotes--
	}
	switch next {
	case Upvote:
		d.score++
		d.upvotes++
	case Downvote:
		d.score--
		d.downvotes++
	}
	return d
}

// Apply records userID's vote on recapID and updates the recap's
// counters in the same transaction. value 0 retracts an existing vote;
// re-casting the same value is a no-op. Returns the recap as read
// after commit.
func (s *VoteService) Apply(recapID, userID uint, value int) (*models.Recap, error) {
	if value != Upvote && value != Downvote && value != Retract {
		return nil, ErrInvalidVote
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		delta, err := s.applyLedger(tx, recapID, userID, value)
		if err != nil {
			return err
		}
		return s.applyCounters(tx, recapID, delta)
	})
	if err != nil {
		return nil, s.classify(err, recapID, userID)
	}

	var recap models.Recap
	if err := s.db.Preload("Title").Preload("User").First(&recap, recapID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecapNotFound
		}
		return nil, err
	}
	return &recap, nil
}

// applyLedger mutates the (recapID, userID) vote row inside tx and
// returns the counter delta the mutation implies. The existing row is
// read FOR UPDATE so two calls for the same pair serialize instead of
// losing an update.
func (s *VoteService) applyLedger(tx *gorm.DB, recapID, userID uint, value int) (counterDelta, error) {
	q := tx.Where("recap_id = ? AND user_id = ?", recapID, userID)
	if tx.Dialector.Name() == "postgres" {
		// SQLite has no FOR UPDATE; it takes a database-level write
		// lock instead, which serializes writers anyway.
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var vote models.Vote
	err := q.First(&vote).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return counterDelta{}, err
	}
	missing := errors.Is(err, gorm.ErrRecordNotFound)

	if value == Retract {
		if missing {
			return counterDelta{}, nil
		}
		if err := tx.Delete(&vote).Error; err != nil {
			return counterDelta{}, err
		}
		return transitionDelta(vote.Value, Retract), nil
	}

	if !missing {
		if vote.Value == value {
			// Idempotent re-vote.
			return counterDelta{}, nil
		}
		old := vote.Value
		if err := tx.Model(&vote).Update("value", value).Error; err != nil {
			return counterDelta{}, err
		}
		return transitionDelta(old, value), nil
	}

	vote = models.Vote{RecapID: recapID, UserID: userID, Value: value}
	if err := tx.Create(&vote).Error; err != nil {
		return counterDelta{}, err
	}
	return transitionDelta(Retract, value), nil
}

// classify turns low-level transaction failures into the service's
// sentinels. Runs after rollback: a failed statement leaves a Postgres
// transaction unusable, so the existence probes use a fresh session.
func (s *VoteService) classify(err error, recapID, userID uint) error {
	switch {
	case errors.Is(err, ErrRecapNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrVoteConflict):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		// Lost the insert race against another call for the same pair.
		return ErrVoteConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "40001", "40P01": // unique, serialization, deadlock
			return ErrVoteConflict
		}
	}

	var n int64
	if e := s.db.Model(&models.Recap{}).Where("id = ?", recapID).Count(&n).Error; e == nil && n == 0 {
		return ErrRecapNotFound
	}
	if e := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&n).Error; e == nil && n == 0 {
		return ErrUserNotFound
	}
	return err
}

// applyCounters adds delta to the recap's counters with a relative
// UPDATE (counter = counter + d) so concurrent voters on different
// rows of the same recap never clobber each other. A zero delta writes
// nothing.
func (s *VoteService) applyCounters(tx *gorm.DB, recapID uint, delta counterDelta) error {
	if delta.zero() {
		return nil
	}
	updates := map[string]interface{}{}
	if delta.score != 0 {
		updates["score"] = gorm.Expr("score + ?", delta.score)
	}
	if delta.upvotes != 0 {
		updates["upvotes"] = gorm.Expr("upvotes + ?", delta.upvotes)
	}
	if delta.downvotes != 0 {
		updates["downvotes"] = gorm.Expr("downvotes + ?", delta.downvotes)
	}
	res := tx.Model(&models.Recap{}).Where("id = ?", recapID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecapNotFound
	}
	return nil
}

// voteTotals is the scan target for the grouped ledger aggregation.
type voteTotals struct {
	RecapID   uint
	Score     int
	Upvotes   int
	Downvotes int
}

// RefreshMetrics recomputes score/upvotes/downvotes for the given
// recaps straight from the votes table, replacing whatever the
// counters currently hold. With no arguments it covers every recap.
// Recaps without any vote rows are reset to zero. Each recap's three
// counters are written together, but recaps commit independently.
func (s *VoteService) RefreshMetrics(recapIDs ...uint) error {
	ids := recapIDs
	if len(ids) == 0 {
		if err := s.db.Model(&models.Recap{}).Pluck("id", &ids).Error; err != nil {
			return err
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var totals []voteTotals
	err := s.db.Model(&models.Vote{}).
		Select("recap_id, " +
			"COALESCE(SUM(value), 0) AS score, " +
			"SUM(CASE WHEN value = 1 THEN 1 ELSE 0 END) AS upvotes, " +
			"SUM(CASE WHEN value = -1 THEN 1 ELSE 0 END) AS downvotes").
		Where("recap_id IN ?", ids).
		Group("recap_id").
		Scan(&totals).Error
	if err != nil {
		return err
	}

	byRecap := make(map[uint]voteTotals, len(totals))
	for _, t := range totals {
		byRecap[t.RecapID] = t
	}

	for _, id := range ids {
		t := byRecap[id] // zero value resets voteless recaps
		err := s.db.Model(&models.Recap{}).Where("id = ?", id).Updates(map[string]interface{}{
			"score":     t.Score,
			"upvotes":   t.Upvotes,
			"downvotes": t.Downvotes,
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// CurrentValues returns userID's vote value per recap for the given
// recaps. Recaps the user has not voted on are absent from the map.
func (s *VoteService) CurrentValues(userID uint, recapIDs []uint) (map[uint]int, error) {
	if len(recapIDs) == 0 {
		return map[uint]int{}, nil
	}
	var votes []models.Vote
	err := s.db.Where("user_id = ? AND recap_id IN ?", userID, recapIDs).Find(&votes).Error
	if err != nil {
		return nil, err
	}
	values := make(map[uint]int, len(votes))
	for _, v := range votes {
		values[v.RecapID] = v.Value
	}
	return values, nil
}
