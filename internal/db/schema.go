package db

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
DEFINE TABLE IF NOT EXISTS user SCHEMAFULL;

DEFINE FIELD IF NOT EXISTS name ON user TYPE string;
DEFINE FIELD IF NOT EXISTS email ON user TYPE string
    ASSERT string::is::email($value);
DEFINE FIELD IF NOT EXISTS feed_url ON user TYPE string;
DEFINE FIELD IF NOT EXISTS api_key ON user TYPE string;
DEFINE FIELD IF NOT EXISTS created_at ON user TYPE datetime DEFAULT time::now();
DEFINE FIELD IF NOT EXISTS updated_at ON user TYPE datetime DEFAULT time::now();

DEFINE INDEX IF NOT EXISTS user_email_idx ON user FIELDS email UNIQUE;
`
