package database

const (
	// User queries
	queryUpsertUser = `
		INSERT INTO users (id, email, name, phone)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			phone = excluded.phone,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, email, name, phone, created_at, updated_at`

	queryGetUserById = `
		SELECT id, email, name, phone, created_at, updated_at
		FROM users
		WHERE id = ?`

	// Wallet queries
	queryCountUserWallets = `
		SELECT COUNT(*) FROM wallets WHERE user_id = ?`

	queryGetWalletByAddress = `
		SELECT id, user_id, address, type, chain_id, is_default, label, balance, created_at, updated_at
		FROM wallets
		WHERE address = ?`

	queryGetUserWallets = `
		SELECT id, user_id, address, type, chain_id, is_default, label, balance, created_at, updated_at
		FROM wallets
		WHERE user_id = ?
		ORDER BY created_at`

	queryInsertWallet = `
		INSERT INTO wallets (id, user_id, address, type, chain_id, is_default, label)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, user_id, address, type, chain_id, is_default, label, balance, created_at, updated_at`

	queryTouchWallet = `
		UPDATE wallets
		SET chain_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE address = ?`

	queryUpdateWalletBalance = `
		UPDATE wallets
		SET balance = ?, updated_at = CURRENT_TIMESTAMP
		WHERE address = ?`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (
			id, user_id, from_address, to_address, amount, currency, type, status,
			tx_hash, gas_used, gas_price, block_number, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, user_id, from_address, to_address, amount, currency, type, status,
		          tx_hash, gas_used, gas_price, block_number, metadata, created_at`

	queryListTransactions = `
		SELECT id, user_id, from_address, to_address, amount, currency, type, status,
		       tx_hash, gas_used, gas_price, block_number, metadata, created_at
		FROM transactions
		WHERE user_id = ?
		  AND (? = '' OR from_address = ? OR to_address = ?)
		  AND (? = '' OR status = ?)
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	queryCountTransactions = `
		SELECT COUNT(*)
		FROM transactions
		WHERE user_id = ?
		  AND (? = '' OR from_address = ? OR to_address = ?)
		  AND (? = '' OR status = ?)`

	// Session queries
	queryInsertSession = `
		INSERT INTO sessions (id, user_id, token, ip_address, user_agent, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, user_id, token, ip_address, user_agent, expires_at, created_at`

	queryGetSessionByToken = `
		SELECT id, user_id, token, ip_address, user_agent, expires_at, created_at
		FROM sessions
		WHERE token = ?`

	queryDeleteUserSessions = `
		DELETE FROM sessions WHERE user_id = ?`
)
