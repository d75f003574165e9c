package optionmodels

import "fmt"

type ExerciseStyle string

const (
	European ExerciseStyle = "european"
	American ExerciseStyle = "american"
)

func (s ExerciseStyle) Validate() error {
	if s != European && s != American {
		return fmt.Errorf("ExerciseStyle: Validate: invalid exercise style: %s", s)
	}

	return nil
}
