package config

import (
	"fmt"

	"github.com/spf13/viper"

	"plate-slip-service/internal/domain/plate"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DetectorConfig struct {
	ModelPath     string
	InputSize     int
	ConfThreshold float64
	NMSThreshold  float64
	Selection     plate.SelectionStrategy
}

type OCRConfig struct {
	Languages string
	UseGPU    bool
}

type SlipConfig struct {
	Dir             string
	Fee             string
	FontRegularPath string
	FontBoldPath    string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	Detector    DetectorConfig
	OCR         OCRConfig
	Slip        SlipConfig
	CropPadding int
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		Detector: DetectorConfig{
			ModelPath:     v.GetString("DETECTOR_MODEL_PATH"),
			InputSize:     v.GetInt("DETECTOR_INPUT_SIZE"),
			ConfThreshold: v.GetFloat64("DETECTOR_CONF_THRESHOLD"),
			NMSThreshold:  v.GetFloat64("DETECTOR_NMS_THRESHOLD"),
			Selection:     plate.SelectionStrategy(v.GetString("DETECTOR_SELECTION")),
		},
		OCR: OCRConfig{
			Languages: v.GetString("OCR_LANGUAGES"),
			UseGPU:    v.GetBool("OCR_USE_GPU"),
		},
		Slip: SlipConfig{
			Dir:             v.GetString("SLIPS_DIR"),
			Fee:             v.GetString("PARKING_FEE"),
			FontRegularPath: v.GetString("FONT_REGULAR_PATH"),
			FontBoldPath:    v.GetString("FONT_BOLD_PATH"),
		},
		CropPadding: v.GetInt("CROP_PADDING"),
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Detector.ModelPath == "" {
		cfg.Detector.ModelPath = "best.onnx"
	}
	if cfg.Detector.InputSize == 0 {
		cfg.Detector.InputSize = 640
	}
	if cfg.Detector.ConfThreshold == 0 {
		cfg.Detector.ConfThreshold = 0.25
	}
	if cfg.Detector.NMSThreshold == 0 {
		cfg.Detector.NMSThreshold = 0.45
	}
	if cfg.Detector.Selection == "" {
		cfg.Detector.Selection = plate.SelectFirst
	}
	if cfg.OCR.Languages == "" {
		cfg.OCR.Languages = "eng"
	}
	if cfg.Slip.Dir == "" {
		cfg.Slip.Dir = "static/slips"
	}
	if cfg.Slip.Fee == "" {
		cfg.Slip.Fee = "Rs. 30.00"
	}
	if cfg.CropPadding == 0 {
		cfg.CropPadding = 4
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if !cfg.Detector.Selection.Valid() {
		return fmt.Errorf("DETECTOR_SELECTION must be one of first, highest_confidence, largest_area")
	}
	if cfg.CropPadding < 0 {
		return fmt.Errorf("CROP_PADDING must not be negative")
	}
	return nil
}
