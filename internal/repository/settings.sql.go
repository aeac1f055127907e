package repository

import "context"

const getSetting = `-- name: GetSetting :one
SELECT value FROM platform_settings WHERE key = $1`

func (q *Queries) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := q.db.QueryRow(ctx, getSetting, key).Scan(&value)
	return value, err
}

const setSetting = `-- name: SetSetting :exec
INSERT INTO platform_settings (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

type SetSettingParams struct {
	Key   string
	Value string
}

func (q *Queries) SetSetting(ctx context.Context, arg SetSettingParams) error {
	_, err := q.db.Exec(ctx, setSetting, arg.Key, arg.Value)
	return err
}
