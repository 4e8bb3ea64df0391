package database

import (
	"context"
	"database/sql"
)

// schema holds one DDL statement per entry because the MySQL driver does
// not execute multi-statement strings by default. All statements are
// idempotent. Foreign keys use the default NO ACTION behavior: deleting a
// referenced row is rejected by the store, never cascaded.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS role (
		id   TINYINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(32) NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_role_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS user (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		username      VARCHAR(64)  NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		followers     BIGINT NOT NULL DEFAULT 0,
		following     BIGINT NOT NULL DEFAULT 0,
		role          TINYINT UNSIGNED NOT NULL DEFAULT 3,
		created_at    DATETIME NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_user_username (username),
		CONSTRAINT fk_user_role FOREIGN KEY (role) REFERENCES role (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS follower (
		user_id     BIGINT UNSIGNED NOT NULL,
		follower_id BIGINT UNSIGNED NOT NULL,
		created_at  DATETIME NOT NULL,
		PRIMARY KEY (user_id, follower_id),
		CONSTRAINT fk_follower_user     FOREIGN KEY (user_id)     REFERENCES user (id),
		CONSTRAINT fk_follower_follower FOREIGN KEY (follower_id) REFERENCES user (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS post (
		id              BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		related_to_post BIGINT UNSIGNED NULL,
		user_id         BIGINT UNSIGNED NOT NULL,
		text            TEXT NOT NULL,
		likes           BIGINT NOT NULL DEFAULT 0,
		comments        BIGINT NOT NULL DEFAULT 0,
		created_at      DATETIME NOT NULL,
		PRIMARY KEY (id),
		KEY idx_post_user_created (user_id, created_at),
		CONSTRAINT fk_post_parent FOREIGN KEY (related_to_post) REFERENCES post (id),
		CONSTRAINT fk_post_user   FOREIGN KEY (user_id)         REFERENCES user (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS post_like (
		post_id    BIGINT UNSIGNED NOT NULL,
		user_id    BIGINT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (post_id, user_id),
		CONSTRAINT fk_like_post FOREIGN KEY (post_id) REFERENCES post (id),
		CONSTRAINT fk_like_user FOREIGN KEY (user_id) REFERENCES user (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS session (
		token      VARCHAR(512) NOT NULL,
		user_id    BIGINT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL,
		PRIMARY KEY (token),
		KEY idx_session_expires (expires_at),
		CONSTRAINT fk_session_user FOREIGN KEY (user_id) REFERENCES user (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	// Seed the role hierarchy; INSERT IGNORE keeps reruns harmless.
	`INSERT IGNORE INTO role (id, name) VALUES (1,'admin'), (2,'moderator'), (3,'user')`,
}

// Migrate creates the six application tables and seeds the role rows.
// Safe to run on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
