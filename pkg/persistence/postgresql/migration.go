package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE users (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) NOT NULL UNIQUE,
				role VARCHAR(20) NOT NULL CHECK (role IN ('admin', 'manager', 'agent')),
				active BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_users_role_active ON users(role, active);

			CREATE TABLE leads (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255),
				phone VARCHAR(50),
				stage VARCHAR(100) NOT NULL,
				status VARCHAR(20) NOT NULL DEFAULT 'open',
				assigned_to UUID REFERENCES users(id),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_leads_stage ON leads(stage);
			CREATE INDEX idx_leads_assigned_to ON leads(assigned_to);
			CREATE INDEX idx_leads_deleted_at ON leads(deleted_at);

			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_workflows_is_active ON workflows(is_active);
			CREATE INDEX idx_workflows_deleted_at ON workflows(deleted_at);

			CREATE TABLE workflow_triggers (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				trigger_type VARCHAR(50) NOT NULL,
				trigger_config JSONB NOT NULL DEFAULT '{}'
			);

			CREATE INDEX idx_workflow_triggers_workflow_id ON workflow_triggers(workflow_id);
			CREATE INDEX idx_workflow_triggers_type ON workflow_triggers(trigger_type);

			CREATE TABLE workflow_actions (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				action_type VARCHAR(50) NOT NULL,
				action_config JSONB NOT NULL DEFAULT '{}'
			);

			CREATE INDEX idx_workflow_actions_workflow_id ON workflow_actions(workflow_id);

			CREATE TABLE tags (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				color VARCHAR(20),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE lead_tags (
				lead_id UUID NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
				tag_id UUID NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
				PRIMARY KEY (lead_id, tag_id)
			);

			CREATE TABLE messages (
				id UUID PRIMARY KEY,
				lead_id UUID NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
				direction VARCHAR(10) NOT NULL,
				channel VARCHAR(20) NOT NULL,
				subject TEXT NOT NULL DEFAULT '',
				body TEXT NOT NULL DEFAULT '',
				status VARCHAR(20) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_messages_lead_id ON messages(lead_id);
			CREATE INDEX idx_messages_status ON messages(status);
		`,
		2: `
			CREATE TABLE boards (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				is_default BOOLEAN NOT NULL DEFAULT false,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			-- At most one default board.
			CREATE UNIQUE INDEX idx_boards_default ON boards(is_default) WHERE is_default;

			CREATE TABLE board_columns (
				id UUID PRIMARY KEY,
				board_id UUID NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
				name VARCHAR(255) NOT NULL,
				position INT NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_board_columns_board_id ON board_columns(board_id);

			CREATE TABLE cards (
				id UUID PRIMARY KEY,
				column_id UUID NOT NULL REFERENCES board_columns(id) ON DELETE CASCADE,
				title VARCHAR(255) NOT NULL,
				lead_id UUID REFERENCES leads(id) ON DELETE SET NULL,
				position INT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				-- Deferred so that sibling shifts inside a move transaction
				-- may pass through transient duplicates; the dense invariant
				-- is enforced at commit.
				CONSTRAINT cards_column_position_key UNIQUE (column_id, position) DEFERRABLE INITIALLY DEFERRED
			);

			CREATE INDEX idx_cards_column_id ON cards(column_id);
			CREATE INDEX idx_cards_lead_id ON cards(lead_id);
		`,
		3: `
			CREATE TABLE rotation_cursors (
				key VARCHAR(100) PRIMARY KEY,
				last_assignee_id UUID NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);
		`,
	}
}
