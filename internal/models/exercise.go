package models

// Exercise is one guided exercise from the catalog.
type Exercise struct {
	Name     string   `yaml:"name" json:"name"`
	Duration string   `yaml:"duration" json:"duration"`
	Steps    []string `yaml:"steps" json:"steps"`
	Tip      string   `yaml:"tip" json:"tip"`
}

// ExerciseType groups exercises of one kind (e.g. "Stretching / Mobility") within a category.
type ExerciseType struct {
	Name      string     `yaml:"name" json:"name"`
	Exercises []Exercise `yaml:"exercises" json:"exercises"`
}

// Category is a body region grouping of exercise types.
type Category struct {
	Name  string         `yaml:"name" json:"name"`
	Types []ExerciseType `yaml:"types" json:"types"`
}

// DietSection is one heading of the diet plan with its ordered advice items.
type DietSection struct {
	Title string   `yaml:"title" json:"title"`
	Items []string `yaml:"items" json:"items"`
}
