// Package appfs embeds the files shipped with the binaries:
// SQL migrations, email templates and static assets.
package appfs

import "embed"

const (
	MigrationsDir      = "migrations"
	EmailTemplatesDir  = "templates/email"
	CommonPasswords    = "assets/common-passwords.txt"
	AchievementCatalog = "assets/achievements.yaml"
)

//go:embed migrations/*.sql templates/email/* assets/*
var FS embed.FS
