package openweather

// CurrentWeatherAPIResponse is the subset of /data/2.5/weather we read.
// Temp is a pointer so a payload without main.temp can be told apart from 0°C.
type CurrentWeatherAPIResponse struct {
	Dt   int64  `json:"dt"`
	Name string `json:"name"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike float64  `json:"feels_like"`
		Humidity  float64  `json:"humidity"`
		Pressure  float64  `json:"pressure"`
	} `json:"main"`
	Weather []Condition `json:"weather"`
}

type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}
