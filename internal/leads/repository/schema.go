package repository

// Schema creates the leads table. Duplicate reg numbers are allowed in
// general since finding them is the job of the dedup workflow; only leads
// recovered from ownership chains are unique per vehicle and owner.
const Schema = `
CREATE TABLE IF NOT EXISTS leads (
	id                 UUID PRIMARY KEY,
	reg_nr             VARCHAR(20),
	chassis_nr         VARCHAR(32),
	owner_name         TEXT,
	phone              VARCHAR(40),
	source             VARCHAR(32) NOT NULL,
	purchase_date      DATE,
	sold_date          DATE,
	ownership_duration VARCHAR(32),
	details            TEXT,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT leads_source_check CHECK (source IN ('ownership_chain', 'listing', 'import'))
);

CREATE UNIQUE INDEX IF NOT EXISTS leads_ownership_reg_nr_key
	ON leads (lower(reg_nr), lower(coalesce(owner_name, '')))
	WHERE source = 'ownership_chain';

CREATE INDEX IF NOT EXISTS leads_reg_nr_idx ON leads (lower(reg_nr));
CREATE INDEX IF NOT EXISTS leads_created_at_idx ON leads (created_at DESC);
`
