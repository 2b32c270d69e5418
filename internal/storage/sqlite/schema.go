package sqlite

const schema = `
-- Teams (firms)
CREATE TABLE IF NOT EXISTS teams (
    team_id TEXT PRIMARY KEY,
    firm_name TEXT NOT NULL,
    location TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_teams_firm_name ON teams(firm_name COLLATE NOCASE);

-- Employees
CREATE TABLE IF NOT EXISTS employees (
    employee_id TEXT PRIMARY KEY,
    employee_name TEXT NOT NULL,
    total_years_experience INTEGER CHECK(total_years_experience IS NULL OR total_years_experience >= 0),
    current_firm_years_experience INTEGER CHECK(current_firm_years_experience IS NULL OR current_firm_years_experience >= 0),
    education TEXT NOT NULL DEFAULT '',
    current_professional_registration TEXT NOT NULL DEFAULT '',
    source_filename TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_employees_name ON employees(employee_name COLLATE NOCASE);

-- Projects
CREATE TABLE IF NOT EXISTS projects (
    project_id TEXT PRIMARY KEY,
    title_and_location TEXT NOT NULL,
    professional_services_year INTEGER,
    construction_year INTEGER,
    description_scope TEXT NOT NULL DEFAULT '',
    description_cost TEXT NOT NULL DEFAULT '',
    description_fee TEXT NOT NULL DEFAULT '',
    description_role TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_projects_title ON projects(title_and_location COLLATE NOCASE);

-- Assignments: the join entity binding an employee to an optional team and
-- optional project. The partial unique index is the (employee, project)
-- uniqueness invariant the merge executor must preserve.
CREATE TABLE IF NOT EXISTS assignments (
    assignment_id TEXT PRIMARY KEY,
    employee_id TEXT NOT NULL,
    team_id TEXT,
    project_id TEXT,
    role_in_contract TEXT NOT NULL DEFAULT '',
    other_professional_qualifications TEXT NOT NULL DEFAULT '',
    project_order INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (employee_id) REFERENCES employees(employee_id) ON DELETE CASCADE,
    FOREIGN KEY (team_id) REFERENCES teams(team_id) ON DELETE SET NULL,
    FOREIGN KEY (project_id) REFERENCES projects(project_id) ON DELETE CASCADE
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_assignments_employee_project
    ON assignments(employee_id, project_id) WHERE project_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_assignments_employee ON assignments(employee_id);
CREATE INDEX IF NOT EXISTS idx_assignments_team ON assignments(team_id);
CREATE INDEX IF NOT EXISTS idx_assignments_project ON assignments(project_id);

-- Professional qualifications: one row per (employee, source resume)
-- registration entry. At most one primary per employee.
CREATE TABLE IF NOT EXISTS qualifications (
    qualification_id TEXT PRIMARY KEY,
    employee_id TEXT NOT NULL,
    current_professional_registration TEXT NOT NULL DEFAULT '',
    other_professional_qualifications TEXT NOT NULL DEFAULT '',
    source_filename TEXT NOT NULL DEFAULT '',
    is_primary INTEGER NOT NULL DEFAULT 0 CHECK(is_primary IN (0, 1)),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (employee_id) REFERENCES employees(employee_id) ON DELETE CASCADE
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_qualifications_primary
    ON qualifications(employee_id) WHERE is_primary = 1;
CREATE INDEX IF NOT EXISTS idx_qualifications_employee ON qualifications(employee_id);
`
