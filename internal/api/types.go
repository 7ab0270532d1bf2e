package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// ID is an opaque identifier. The backend sends some ids as numbers and some
// as strings; both decode to the same string form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Identity is the signed-in user as the auth gateway reports it.
type Identity struct {
	ID    ID     `json:"id"`
	Email string `json:"email"`
	Name  string `json:"nombre"`
	Role  string `json:"rol"`
}

// UnmarshalJSON accepts both the Spanish and the English field names.
func (i *Identity) UnmarshalJSON(b []byte) error {
	var w struct {
		ID       ID     `json:"id"`
		UserID   ID     `json:"id_usuario"`
		Email    string `json:"email"`
		Nombre   string `json:"nombre"`
		Name     string `json:"name"`
		Rol      string `json:"rol"`
		Role     string `json:"role"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*i = Identity{
		ID:    firstID(w.ID, w.UserID),
		Email: w.Email,
		Name:  first(w.Nombre, w.Name, w.Username),
		Role:  first(w.Rol, w.Role),
	}
	return nil
}

// Path is a learning path ("ruta").
type Path struct {
	ID          ID     `json:"id"`
	Title       string `json:"titulo"`
	Description string `json:"descripcion"`
	Level       string `json:"nivel,omitempty"`
	Order       int    `json:"orden"`
	ModuleCount int    `json:"total_modulos,omitempty"`
}

// Module belongs to a path. Order is the "orden" field the overview sorts by.
type Module struct {
	ID          ID     `json:"id"`
	PathID      ID     `json:"ruta_id,omitempty"`
	Title       string `json:"titulo"`
	Description string `json:"descripcion"`
	Order       int    `json:"orden"`
	Progress    int    `json:"progreso"`
}

func (m *Module) UnmarshalJSON(b []byte) error {
	var w struct {
		ID          ID     `json:"id"`
		ModuleID    ID     `json:"id_modulo"`
		PathID      ID     `json:"ruta_id"`
		Titulo      string `json:"titulo"`
		Title       string `json:"title"`
		Descripcion string `json:"descripcion"`
		Description string `json:"description"`
		Orden       int    `json:"orden"`
		Progreso    int    `json:"progreso"`
		Progress    int    `json:"progress"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*m = Module{
		ID:          firstID(w.ID, w.ModuleID),
		PathID:      w.PathID,
		Title:       first(w.Titulo, w.Title),
		Description: first(w.Descripcion, w.Description),
		Order:       w.Orden,
		Progress:    max(w.Progreso, w.Progress),
	}
	return nil
}

// Lesson belongs to a module. Content is markdown.
type Lesson struct {
	ID        ID     `json:"id"`
	ModuleID  ID     `json:"modulo_id,omitempty"`
	Title     string `json:"titulo"`
	Content   string `json:"contenido,omitempty"`
	Minutes   int    `json:"duracion,omitempty"`
	Order     int    `json:"orden"`
	Completed bool   `json:"completada"`
}

func (l *Lesson) UnmarshalJSON(b []byte) error {
	var w struct {
		ID        ID     `json:"id"`
		LessonID  ID     `json:"id_leccion"`
		ModuleID  ID     `json:"modulo_id"`
		Titulo    string `json:"titulo"`
		Title     string `json:"title"`
		Contenido string `json:"contenido"`
		Content   string `json:"content"`
		Duracion  int    `json:"duracion"`
		Orden     int    `json:"orden"`
		Completed bool   `json:"completada"`
		Done      bool   `json:"completed"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*l = Lesson{
		ID:        firstID(w.LessonID, w.ID),
		ModuleID:  w.ModuleID,
		Title:     first(w.Titulo, w.Title),
		Content:   first(w.Contenido, w.Content),
		Minutes:   w.Duracion,
		Order:     w.Orden,
		Completed: w.Completed || w.Done,
	}
	return nil
}

// TeacherStats is the aggregate returned by /docente/estadisticas.
type TeacherStats struct {
	Students     int            `json:"total_estudiantes"`
	Teachers     int            `json:"total_docentes"`
	Paths        int            `json:"total_rutas"`
	Modules      int            `json:"total_modulos"`
	Lessons      int            `json:"total_lecciones"`
	Assessments  int            `json:"evaluaciones_generadas"`
	Explanations int            `json:"explicaciones_generadas"`
	ByRole       map[string]int `json:"usuarios_por_rol,omitempty"`
}

// ResultReport is the body of POST /resultados: one finished assessment.
type ResultReport struct {
	PathID   string `json:"ruta_id,omitempty"`
	ModuleID string `json:"modulo_id,omitempty"`
	LessonID string `json:"leccion_id"`
	Title    string `json:"titulo,omitempty"`
	Correct  int    `json:"correctas"`
	Total    int    `json:"total"`
}

// Reasons a student is flagged at risk.
const (
	RiskInactive = "inactividad"
	RiskLowScore = "bajo_rendimiento"
	RiskFailing  = "multiples_fallos"
)

// StudentProgress is one row of /docente/estudiantes. Progress is the share
// of catalog lessons the student has been assessed on; Score is the share
// of questions answered correctly. Both are percentages.
type StudentProgress struct {
	ID           ID         `json:"id"`
	Name         string     `json:"nombre"`
	Email        string     `json:"email"`
	Attempts     int        `json:"evaluaciones"`
	Lessons      int        `json:"lecciones_evaluadas"`
	Progress     int        `json:"progreso"`
	Score        int        `json:"promedio"`
	LastActivity *time.Time `json:"ultima_actividad,omitempty"`
	AtRisk       bool       `json:"en_riesgo"`
	Risk         string     `json:"motivo_riesgo,omitempty"`
}

// ModuleProgress is a student's coverage of one module.
type ModuleProgress struct {
	ID       ID     `json:"id"`
	Title    string `json:"titulo"`
	Assessed int    `json:"lecciones_evaluadas"`
	Lessons  int    `json:"total_lecciones"`
}

// Percent returns Assessed/Lessons as a whole percentage.
func (m ModuleProgress) Percent() int {
	if m.Lessons == 0 {
		return 0
	}
	return min(m.Assessed*100/m.Lessons, 100)
}

// ResultEntry is one assessment in a student's history.
type ResultEntry struct {
	LessonID string    `json:"leccion_id"`
	Title    string    `json:"titulo"`
	Correct  int       `json:"correctas"`
	Total    int       `json:"total"`
	At       time.Time `json:"fecha"`
}

// StudentDetail is returned by /docente/estudiantes/{id}. Recent is newest
// first.
type StudentDetail struct {
	StudentProgress
	Modules []ModuleProgress `json:"modulos"`
	Recent  []ResultEntry    `json:"resultados"`
}

// VersionInfo is returned by /version.
type VersionInfo struct {
	Version string `json:"version"`
	Name    string `json:"nombre,omitempty"`
}

func first(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstID(vals ...ID) ID {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
