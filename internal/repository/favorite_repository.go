package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/weather-dashboard/internal/model"
)

// FavoriteRepo provides data access to the favorite_cities table.  The
// duplicate check in Create is advisory: two identical concurrent requests
// may both pass it and insert twice.  That race is accepted; the check
// exists to give users a clean 409 in the common sequential case.
type FavoriteRepo struct{ DB *sql.DB }

func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{DB: db} }

// Create inserts a favorite after checking for a case-insensitive duplicate
// city name belonging to the same user.
func (r *FavoriteRepo) Create(ctx context.Context, userID uint64, city string, country *string, lat, lon *float64) (model.FavoriteCity, error) {
	city = strings.TrimSpace(city)

	var existing uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM favorite_cities WHERE user_id=? AND LOWER(city)=LOWER(?) LIMIT 1",
		userID, city).Scan(&existing)
	if err == nil {
		return model.FavoriteCity{}, ErrDuplicateCity
	}
	if err != sql.ErrNoRows {
		return model.FavoriteCity{}, err
	}

	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO favorite_cities (user_id, city, country, lat, lon) VALUES (?,?,?,?,?)",
		userID, city, country, lat, lon)
	if err != nil {
		return model.FavoriteCity{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.FavoriteCity{}, err
	}
	return model.FavoriteCity{
		ID:        uint64(id),
		UserID:    userID,
		City:      city,
		Country:   country,
		Lat:       lat,
		Lon:       lon,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ListByUser returns the user's favorites, newest first.
func (r *FavoriteRepo) ListByUser(ctx context.Context, userID uint64) ([]model.FavoriteCity, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,city,country,lat,lon,created_at FROM favorite_cities WHERE user_id=? ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	favorites := make([]model.FavoriteCity, 0)
	for rows.Next() {
		var f model.FavoriteCity
		if err := rows.Scan(&f.ID, &f.UserID, &f.City, &f.Country, &f.Lat, &f.Lon, &f.CreatedAt); err != nil {
			return nil, err
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

// DeleteOwned removes a favorite only when it belongs to the given user and
// reports how many rows were affected.  Deleting someone else's favorite is
// a zero-row no-op, which deliberately does not confirm whether the row
// exists.
func (r *FavoriteRepo) DeleteOwned(ctx context.Context, id, userID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM favorite_cities WHERE id=? AND user_id=?",
		id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
