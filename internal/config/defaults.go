package config

const (
	defaultPrintsDir        = "~/prints"
	defaultLogDir           = "~/.local/share/lapse/logs"
	defaultPollInterval     = 10
	defaultStatusTimeout    = 20
	defaultJobTimeout       = 10
	defaultImageWidth       = 1920
	defaultImageHeight      = 1080
	defaultFocusDistance    = 22
	defaultCaptureInterval  = 30
	defaultCaptureTimeout   = 10
	defaultVideoFPS         = 30
	defaultVideoQuality     = 23
	defaultVideoBatchSize   = 150
	defaultEncodeTimeout    = 300
	defaultConnectUploadURL = "https://webcam.connect.prusa3d.com/c/snapshot"
	defaultConnectTimeout   = 10
	defaultSMTPPort         = 587
	defaultNtfyTimeout      = 10
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			PrintsDir: defaultPrintsDir,
			LogDir:    defaultLogDir,
		},
		Printer: Printer{
			PollInterval:  defaultPollInterval,
			StatusTimeout: defaultStatusTimeout,
			JobTimeout:    defaultJobTimeout,
		},
		Camera: Camera{
			Width:           defaultImageWidth,
			Height:          defaultImageHeight,
			FocusDistance:   defaultFocusDistance,
			CaptureInterval: defaultCaptureInterval,
			CaptureTimeout:  defaultCaptureTimeout,
		},
		Video: Video{
			FPS:           defaultVideoFPS,
			Quality:       defaultVideoQuality,
			BatchSize:     defaultVideoBatchSize,
			EncodeTimeout: defaultEncodeTimeout,
		},
		Connect: Connect{
			UploadURL: defaultConnectUploadURL,
			Timeout:   defaultConnectTimeout,
		},
		Email: Email{
			SMTPPort: defaultSMTPPort,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
