package enrollment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dibadokht/kelaasor-final/api/web"
	"github.com/dibadokht/kelaasor-final/api/weberr"
	"github.com/dibadokht/kelaasor-final/core/claims"
	"github.com/jmoiron/sqlx"
)

func HandleListMine(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		enrollments, err := FetchByUser(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching enrollments: %w", err)
		}

		return web.Respond(ctx, w, enrollments, http.StatusOK)
	}
}
