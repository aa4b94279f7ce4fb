package postgres

const (
	selectUser = `
		SELECT u.id::text, u.role_id::text, r.name, u.first_name, u.last_name, u.username, u.email,
		       to_char(u.birthdate, 'YYYY-MM-DD'), u.personal_phone, u.home_phone, u.address,
		       u.password, u.state, COALESCE(i.path, ''), u.created_at, u.updated_at
		FROM users u
		JOIN roles r ON r.id = u.role_id
		LEFT JOIN images i ON i.user_id = u.id
	`
	selectUserByID    = selectUser + `WHERE u.id = $1::uuid`
	selectUserByLogin = selectUser + `WHERE u.username = $1 OR u.email = $1`
	selectUsersByRole = selectUser + `
		WHERE u.role_id = $1::uuid AND u.username LIKE $2 ESCAPE '\'
		ORDER BY u.first_name ASC, u.last_name ASC
		LIMIT $3 OFFSET $4
	`
	countUsersByRole = `
		SELECT COUNT(*) FROM users u
		WHERE u.role_id = $1::uuid AND u.username LIKE $2 ESCAPE '\'
	`

	insertUser = `
		INSERT INTO users (id, role_id, first_name, last_name, username, email, birthdate,
		                   personal_phone, home_phone, address, password, state)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7::date, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	updateUser = `
		UPDATE users
		SET first_name = $1, last_name = $2, username = $3, email = $4, birthdate = $5::date,
		    personal_phone = $6, home_phone = $7, address = $8, password = $9, updated_at = now()
		WHERE id = $10::uuid
		RETURNING updated_at
	`
	updateUserPassword = `UPDATE users SET password = $1, updated_at = now() WHERE id = $2::uuid`
	updateUserState    = `UPDATE users SET state = $1, updated_at = now() WHERE id = $2::uuid`

	existsUsername = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND ($2 = '' OR id::text <> $2))`
	existsEmail    = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND ($2 = '' OR id::text <> $2))`

	deleteUserImages = `DELETE FROM images WHERE user_id = $1::uuid`
	insertUserImage  = `INSERT INTO images (user_id, path) VALUES ($1::uuid, $2)`

	selectRoleByName = `SELECT id::text, name, created_at, updated_at FROM roles WHERE name = $1`
)
