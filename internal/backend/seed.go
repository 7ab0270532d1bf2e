package backend

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/learninghub/internal/store"
)

// Demo account created by Seed.
const (
	DemoEmail    = "demo@test.com"
	DemoPassword = "demo123"
	DemoName     = "Demo User"
)

var seedPaths = []store.Path{
	{ID: "ai-fundamentals", Title: "Fundamentos de IA", Description: "Qué es la inteligencia artificial y cómo aprenden las máquinas.", Level: "principiante", Position: 1},
	{ID: "data-science-basics", Title: "Ciencia de datos básica", Description: "Preparar, explorar y resumir datos.", Level: "principiante", Position: 2},
}

// Modules are listed out of order on purpose; clients sort by position.
var seedModules = []store.Module{
	{ID: "neural-networks", PathID: "ai-fundamentals", Title: "Redes neuronales", Description: "Neuronas artificiales, capas y entrenamiento.", Position: 2},
	{ID: "intro-ai", PathID: "ai-fundamentals", Title: "Introducción a la IA", Description: "Definiciones e historia.", Position: 1},
	{ID: "ml-ethics", PathID: "ai-fundamentals", Title: "Ética en aprendizaje automático", Description: "Sesgos y responsabilidad.", Position: 3},
	{ID: "statistics", PathID: "data-science-basics", Title: "Estadística descriptiva", Description: "Medidas de tendencia y dispersión.", Position: 2},
	{ID: "data-wrangling", PathID: "data-science-basics", Title: "Preparación de datos", Description: "Limpieza y transformación.", Position: 1},
}

var seedLessons = []store.Lesson{
	{ID: "what-is-ai", ModuleID: "intro-ai", Title: "¿Qué es la IA?", Minutes: 8, Position: 1, Content: `# ¿Qué es la IA?

La inteligencia artificial estudia cómo construir sistemas que realizan tareas
que normalmente requieren inteligencia humana.

## Ideas clave

- **Inteligencia artificial**: campo que crea sistemas capaces de razonar, aprender o percibir.
- **Aprendizaje automático**: rama de la IA que aprende patrones a partir de datos.
- **Modelo**: función aprendida que transforma entradas en predicciones.
- **Datos de entrenamiento**: ejemplos usados para ajustar un modelo.
`},
	{ID: "history-of-ai", ModuleID: "intro-ai", Title: "Breve historia", Minutes: 6, Position: 2, Content: `# Breve historia de la IA

La IA nació como disciplina en 1956 y ha pasado por etapas de entusiasmo e
"inviernos" con poca financiación.

## Ideas clave

- **Conferencia de Dartmouth**: reunión de 1956 donde se acuñó el término inteligencia artificial.
- **Sistemas expertos**: programas basados en reglas escritas por especialistas.
- **Invierno de la IA**: periodo de baja inversión tras expectativas incumplidas.
`},
	{ID: "what-are-neural-networks", ModuleID: "neural-networks", Title: "¿Qué son las redes neuronales?", Minutes: 10, Position: 1, Content: `# ¿Qué son las redes neuronales?

Una red neuronal es un conjunto de unidades simples conectadas en capas. Cada
unidad combina sus entradas ponderadas y aplica una función de activación.

## Ideas clave

- **Neurona artificial**: unidad que suma entradas ponderadas y aplica una activación.
- **Peso**: número que indica la importancia de una conexión.
- **Capa oculta**: capa entre la entrada y la salida que extrae características.
- **Función de activación**: transformación no lineal aplicada a la suma ponderada.
`},
	{ID: "perceptron", ModuleID: "neural-networks", Title: "El perceptrón", Minutes: 7, Position: 2, Content: `# El perceptrón

El perceptrón es la red neuronal más simple: una sola neurona que separa dos
clases con una frontera lineal.

## Ideas clave

- **Perceptrón**: clasificador lineal formado por una única neurona.
- **Sesgo**: término constante que desplaza la frontera de decisión.
- **Separabilidad lineal**: propiedad de clases que una recta puede dividir.
`},
	{ID: "training-backprop", ModuleID: "neural-networks", Title: "Entrenamiento y retropropagación", Minutes: 12, Position: 3, Content: `# Entrenamiento y retropropagación

Entrenar una red consiste en ajustar sus pesos para reducir el error sobre los
datos de entrenamiento.

## Ideas clave

- **Función de pérdida**: medida del error entre la predicción y el valor real.
- **Descenso del gradiente**: método que ajusta los pesos en la dirección que reduce la pérdida.
- **Retropropagación**: algoritmo que calcula los gradientes capa por capa hacia atrás.
- **Tasa de aprendizaje**: tamaño del paso en cada ajuste de pesos.
`},
	{ID: "bias-in-data", ModuleID: "ml-ethics", Title: "Sesgo en los datos", Minutes: 9, Position: 1, Content: `# Sesgo en los datos

Un modelo aprende lo que hay en sus datos, incluidos sus sesgos.

## Ideas clave

- **Sesgo de muestreo**: datos que no representan a toda la población.
- **Equidad**: propiedad de un sistema que trata a los grupos de forma justa.
- **Auditoría de modelos**: revisión sistemática del comportamiento de un modelo.
`},
	{ID: "cleaning-data", ModuleID: "data-wrangling", Title: "Limpieza de datos", Minutes: 8, Position: 1, Content: `# Limpieza de datos

Los datos reales contienen errores, huecos y duplicados.

## Ideas clave

- **Valor faltante**: celda sin dato que hay que imputar o descartar.
- **Duplicado**: registro repetido que distorsiona los conteos.
- **Normalización**: llevar variables a una escala común.
`},
	{ID: "descriptive-stats", ModuleID: "statistics", Title: "Media, mediana y moda", Minutes: 7, Position: 1, Content: `# Media, mediana y moda

Las medidas de tendencia central resumen un conjunto de datos en un valor.

## Ideas clave

- **Media**: suma de los valores dividida entre su número.
- **Mediana**: valor central de los datos ordenados.
- **Moda**: valor que más se repite.
- **Desviación estándar**: medida de cuánto se alejan los datos de la media.
`},
}

// Seed loads the catalog and the demo account. It is safe to run on every
// start.
func Seed(ctx context.Context, st *store.Store, bcryptCost int) error {
	catalog := st.CatalogRepo()
	for _, p := range seedPaths {
		if err := catalog.UpsertPath(ctx, p); err != nil {
			return fmt.Errorf("seed path %s: %w", p.ID, err)
		}
	}
	for _, m := range seedModules {
		if err := catalog.UpsertModule(ctx, m); err != nil {
			return fmt.Errorf("seed module %s: %w", m.ID, err)
		}
	}
	for _, l := range seedLessons {
		if err := catalog.UpsertLesson(ctx, l); err != nil {
			return fmt.Errorf("seed lesson %s: %w", l.ID, err)
		}
	}

	users := st.UserRepo()
	existing, err := users.ByEmail(ctx, DemoEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	return users.Create(ctx, store.User{
		ID:           uuid.NewString(),
		Email:        DemoEmail,
		Name:         DemoName,
		Role:         "alumno",
		PasswordHash: string(hash),
	})
}
