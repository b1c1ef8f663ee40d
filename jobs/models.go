package jobs

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the persisted row in sva_user_role_jobs.
type Record struct {
	bun.BaseModel `bun:"table:sva_user_role_jobs"`

	ID                uuid.UUID `bun:",pk,type:uuid"`
	TransactionID     string    `bun:"transaction_id"`
	CreatedByOfficeID int64     `bun:"created_by_office_id"`
	CreatedByUserID   int64     `bun:"created_by_user_id"`
	CreatedOn         time.Time `bun:"created_on"`
	Action            string    `bun:"action"`
	Roles             string    `bun:"roles"`
	OfficeID          int64     `bun:"office_id"`
	UserID            int64     `bun:"user_id"`
	Status            string    `bun:"status"`
}
