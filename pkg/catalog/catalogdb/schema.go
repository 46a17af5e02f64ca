package catalogdb

// schemaDDL is the warning-only fallback schema applied when the expected
// tables are absent on startup (§4.1). A real deployment is expected to
// apply migrations out-of-band; this keeps a fresh dev environment usable.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS jobs (
	id              uuid PRIMARY KEY,
	type            text NOT NULL,
	status          text NOT NULL,
	params          jsonb NOT NULL DEFAULT '{}',
	progress        integer NOT NULL DEFAULT 0,
	status_message  text NOT NULL DEFAULT '',
	error           text NOT NULL DEFAULT '',
	task_id         text NOT NULL DEFAULT '',
	input_path      text NOT NULL DEFAULT '',
	output_path     text NOT NULL DEFAULT '',
	created_at      timestamptz NOT NULL DEFAULT now(),
	started_at      timestamptz,
	completed_at    timestamptz,
	updated_at      timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS job_logs (
	id        bigserial PRIMARY KEY,
	job_id    uuid NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
	level     text NOT NULL,
	message   text NOT NULL,
	timestamp timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS job_logs_job_id_idx ON job_logs(job_id, timestamp);

CREATE TABLE IF NOT EXISTS goes_frames (
	id              uuid PRIMARY KEY,
	satellite       text NOT NULL,
	sector          text NOT NULL,
	band            text NOT NULL,
	capture_time    timestamptz NOT NULL,
	file_path       text NOT NULL,
	file_size       bigint NOT NULL DEFAULT 0,
	width           integer NOT NULL DEFAULT 0,
	height          integer NOT NULL DEFAULT 0,
	thumbnail_path  text NOT NULL DEFAULT '',
	source_job_id   uuid REFERENCES jobs(id) ON DELETE SET NULL,
	created_at      timestamptz NOT NULL DEFAULT now(),
	UNIQUE (satellite, sector, band, capture_time)
);
CREATE INDEX IF NOT EXISTS goes_frames_capture_time_idx ON goes_frames(capture_time);
CREATE INDEX IF NOT EXISTS goes_frames_sat_band_idx ON goes_frames(satellite, band);

CREATE TABLE IF NOT EXISTS images (
	id         uuid PRIMARY KEY,
	frame_id   uuid NOT NULL REFERENCES goes_frames(id) ON DELETE CASCADE,
	path       text NOT NULL,
	width      integer NOT NULL DEFAULT 0,
	height     integer NOT NULL DEFAULT 0,
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS collections (
	id         uuid PRIMARY KEY,
	name       text NOT NULL UNIQUE,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS collection_frames (
	collection_id uuid NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
	frame_id      uuid NOT NULL REFERENCES goes_frames(id) ON DELETE CASCADE,
	PRIMARY KEY (collection_id, frame_id)
);

CREATE TABLE IF NOT EXISTS tags (
	id         uuid PRIMARY KEY,
	name       text NOT NULL UNIQUE,
	color      text NOT NULL DEFAULT '',
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS frame_tags (
	frame_id uuid NOT NULL REFERENCES goes_frames(id) ON DELETE CASCADE,
	tag_id   uuid NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (frame_id, tag_id)
);

CREATE TABLE IF NOT EXISTS crop_presets (
	id         uuid PRIMARY KEY,
	name       text NOT NULL UNIQUE,
	x          integer NOT NULL,
	y          integer NOT NULL,
	width      integer NOT NULL,
	height     integer NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS fetch_presets (
	id         uuid PRIMARY KEY,
	name       text NOT NULL UNIQUE,
	satellite  text NOT NULL,
	sector     text NOT NULL,
	band       text NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS animation_presets (
	id         uuid PRIMARY KEY,
	name       text NOT NULL UNIQUE,
	format     text NOT NULL,
	quality    text NOT NULL,
	fps        integer NOT NULL,
	loop_style text NOT NULL,
	scale      double precision NOT NULL DEFAULT 1.0,
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS fetch_schedules (
	id               uuid PRIMARY KEY,
	name             text NOT NULL,
	preset_id        uuid NOT NULL REFERENCES fetch_presets(id),
	interval_minutes integer NOT NULL,
	next_run_at      timestamptz,
	last_run_at      timestamptz,
	is_active        boolean NOT NULL DEFAULT true,
	created_at       timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS fetch_schedules_next_run_idx ON fetch_schedules(next_run_at) WHERE is_active;

CREATE TABLE IF NOT EXISTS cleanup_rules (
	id                  uuid PRIMARY KEY,
	rule_type           text NOT NULL,
	value               double precision NOT NULL,
	protect_collections boolean NOT NULL DEFAULT true,
	is_active           boolean NOT NULL DEFAULT true,
	created_at          timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS composites (
	id           uuid PRIMARY KEY,
	job_id       uuid REFERENCES jobs(id) ON DELETE SET NULL,
	recipe       text NOT NULL,
	satellite    text NOT NULL,
	sector       text NOT NULL,
	capture_time timestamptz NOT NULL,
	status       text NOT NULL,
	file_path    text NOT NULL DEFAULT '',
	file_size    bigint NOT NULL DEFAULT 0,
	created_at   timestamptz NOT NULL DEFAULT now(),
	completed_at timestamptz
);

CREATE TABLE IF NOT EXISTS animations (
	id           uuid PRIMARY KEY,
	job_id       uuid REFERENCES jobs(id) ON DELETE SET NULL,
	format       text NOT NULL,
	frame_count  integer NOT NULL DEFAULT 0,
	status       text NOT NULL,
	file_path    text NOT NULL DEFAULT '',
	file_size    bigint NOT NULL DEFAULT 0,
	created_at   timestamptz NOT NULL DEFAULT now(),
	completed_at timestamptz
);

CREATE TABLE IF NOT EXISTS share_links (
	token      text PRIMARY KEY,
	frame_id   uuid NOT NULL REFERENCES goes_frames(id) ON DELETE CASCADE,
	expires_at timestamptz NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS notifications (
	id         uuid PRIMARY KEY,
	type       text NOT NULL,
	message    text NOT NULL,
	read       boolean NOT NULL DEFAULT false,
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS settings (
	id                   integer PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	max_frames_per_fetch integer NOT NULL DEFAULT 200,
	webhook_url          text NOT NULL DEFAULT ''
);
INSERT INTO settings (id) VALUES (1) ON CONFLICT (id) DO NOTHING;
`
