package config

type Config struct {
	Recording  Recording
	Encoder    Encoder
	Storage    Storage
	Playback   Playback
	Server     Server
	Monitoring Monitoring
	Debug      bool
}

type Recording struct {
	// Dir is the folder where assembled artifacts are placed.
	Dir   string
	Title string
	Video struct {
		Width  int
		Height int
		Fps    int
	}
	// ChunkIntervalMs sets segment emission cadence.
	ChunkIntervalMs int
	Cursor          bool
	// Persist mirrors emitted segments into the durable store.
	Persist        bool
	CameraDeviceId string
	MicDeviceId    string
}

type Encoder struct {
	Audio struct {
		// Frame is an Opus frame duration (ms).
		Frame   int
		Bitrate int
	}
	Video struct {
		Vpx struct {
			Bitrate          uint
			KeyframeInterval uint
		}
		Mjpeg struct {
			Quality int
		}
	}
}

type Storage struct {
	// Provider is one of: file, s3, noop.
	Provider string
	Dir      string
	S3       struct {
		Endpoint string
		Bucket   string
		Key      string
		Secret   string
	}
}

type Playback struct {
	Enabled bool
	// SlideMs is the auto-advance interval per slide.
	SlideMs int
	Slides  int
}

type Server struct {
	Address string
}

type Monitoring struct {
	Port             int
	URLPrefix        string
	MetricEnabled    bool
	ProfilingEnabled bool
}

func (m *Monitoring) IsEnabled() bool { return m.MetricEnabled || m.ProfilingEnabled }
