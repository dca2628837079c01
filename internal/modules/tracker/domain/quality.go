package domain

import apperrors "sleeptrack/internal/platform/errors"

type Quality int

const Unrated Quality = -1

const (
	QualityVeryBad Quality = iota
	QualityPoor
	QualitySoSo
	QualityOK
	QualityPrettyGood
	QualityExcellent
)

var qualityLabels = map[Quality]string{
	QualityVeryBad:    "Very bad",
	QualityPoor:       "Poor",
	QualitySoSo:       "So-so",
	QualityOK:         "OK",
	QualityPrettyGood: "Pretty good",
	QualityExcellent:  "Excellent",
}

func (q Quality) Validate() error {
	if q < QualityVeryBad || q > QualityExcellent {
		return apperrors.ErrInvalidQuality
	}
	return nil
}

func (q Quality) Label() string {
	if label, ok := qualityLabels[q]; ok {
		return label
	}
	return "--"
}
