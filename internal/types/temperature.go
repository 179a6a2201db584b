package types

// Temperature is always carried in metric units
type Temperature struct {
	Celsius float64 `json:"celsius"`
}

func NewTemperatureFromCelsius(celsius float64) Temperature {
	return Temperature{
		Celsius: celsius,
	}
}
