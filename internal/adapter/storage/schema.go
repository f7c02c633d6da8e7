package storage

// DDL shared by the MySQL and sqlite backends. Statements are executed one at
// a time because the MySQL driver rejects multi-statement exec by default.
// Date columns hold "2006-01-02 15:04:05" strings written by this package, so
// they compare lexicographically in either dialect.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id   VARCHAR(64)  PRIMARY KEY,
		name VARCHAR(128) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id          VARCHAR(64)   PRIMARY KEY,
		category_id VARCHAR(64)   NOT NULL REFERENCES categories(id),
		name        VARCHAR(255)  NOT NULL,
		price       DECIMAL(12,2) NOT NULL,
		cost        DECIMAL(12,2) NOT NULL,
		created_at  DATETIME,
		updated_at  DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		product_id   VARCHAR(64) PRIMARY KEY REFERENCES products(id),
		warehouse_id VARCHAR(64) NOT NULL,
		stock        INT         NOT NULL,
		version      INT         NOT NULL DEFAULT 0,
		restocked_at DATETIME,
		updated_at   DATETIME,
		CHECK (stock >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id   VARCHAR(64)  PRIMARY KEY,
		name VARCHAR(128) NOT NULL,
		city VARCHAR(128)
	)`,
	`CREATE TABLE IF NOT EXISTS sellers (
		id   VARCHAR(64)  PRIMARY KEY,
		name VARCHAR(128) NOT NULL,
		city VARCHAR(128)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id          VARCHAR(64) PRIMARY KEY,
		customer_id VARCHAR(64) NOT NULL REFERENCES customers(id),
		seller_id   VARCHAR(64) NOT NULL REFERENCES sellers(id),
		order_date  DATETIME    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id         VARCHAR(64)   PRIMARY KEY,
		order_id   VARCHAR(64)   NOT NULL REFERENCES orders(id),
		product_id VARCHAR(64)   NOT NULL REFERENCES products(id),
		quantity   INT           NOT NULL,
		unit_price DECIMAL(12,2) NOT NULL,
		total      DECIMAL(12,2) NOT NULL,
		CHECK (quantity > 0)
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		order_id     VARCHAR(64)   PRIMARY KEY REFERENCES orders(id),
		payment_type VARCHAR(32)   NOT NULL,
		installments INT           NOT NULL DEFAULT 1,
		amount       DECIMAL(12,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS shipments (
		order_id     VARCHAR(64)   PRIMARY KEY REFERENCES orders(id),
		status       VARCHAR(32)   NOT NULL,
		shipped_at   DATETIME,
		estimated_at DATETIME,
		delivered_at DATETIME,
		freight      DECIMAL(12,2)
	)`,
}
