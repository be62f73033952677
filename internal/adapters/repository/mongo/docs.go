package mongo

import (
	"time"

	"github.com/akarpov/telescout/internal/domain"
)

// Document shapes are owned by the adapter so bson tags stay out of the
// domain package. Field names match the relational column names to keep the
// two backends field-for-field equivalent.

type serviceDoc struct {
	Microservice string `bson:"microservice"`
	Interval     int64  `bson:"interval"`
}

type communicationDoc struct {
	Microservice    string    `bson:"microservice"`
	Endpoint        string    `bson:"endpoint"`
	Request         string    `bson:"request"`
	ResponseStatus  int       `bson:"responsestatus"`
	ResponseMessage string    `bson:"responsemessage"`
	Time            time.Time `bson:"time"`
	CorrelatingID   string    `bson:"correlatingid"`
}

type sampleDoc struct {
	Metric   string    `bson:"metric"`
	Value    float64   `bson:"value"`
	Category string    `bson:"category"`
	Time     time.Time `bson:"time"`
}

type containerDoc struct {
	Microservice  string    `bson:"microservice"`
	ContainerName string    `bson:"containername"`
	ContainerID   string    `bson:"containerid"`
	Platform      string    `bson:"containerplatform"`
	StartTime     string    `bson:"containerstarttime"`
	MemUsage      int64     `bson:"containermemusage"`
	MemLimit      int64     `bson:"containermemlimit"`
	MemPercent    float64   `bson:"containermempercent"`
	CPUPercent    float64   `bson:"containercpupercent"`
	NetworkRx     int64     `bson:"networkreceived"`
	NetworkTx     int64     `bson:"networksent"`
	ProcessCount  int64     `bson:"containerprocesscount"`
	RestartCount  int       `bson:"containerrestartcount"`
	Time          time.Time `bson:"time"`
}

func newServiceDoc(svc domain.Service) serviceDoc {
	return serviceDoc{Microservice: svc.Microservice, Interval: svc.Interval}
}

func newCommunicationDoc(rec domain.CommunicationRecord) communicationDoc {
	return communicationDoc{
		Microservice:    rec.Microservice,
		Endpoint:        rec.Endpoint,
		Request:         rec.Method,
		ResponseStatus:  rec.Status,
		ResponseMessage: rec.StatusText,
		Time:            rec.Time,
		CorrelatingID:   rec.CorrelationID,
	}
}

func newContainerDoc(rec domain.ContainerRecord) containerDoc {
	return containerDoc{
		Microservice:  rec.Microservice,
		ContainerName: rec.ContainerName,
		ContainerID:   rec.ContainerID,
		Platform:      rec.Platform,
		StartTime:     rec.StartedAt,
		MemUsage:      int64(rec.MemUsage),
		MemLimit:      int64(rec.MemLimit),
		MemPercent:    rec.MemPercent,
		CPUPercent:    rec.CPUPercent,
		NetworkRx:     int64(rec.NetworkRx),
		NetworkTx:     int64(rec.NetworkTx),
		ProcessCount:  int64(rec.Processes),
		RestartCount:  rec.Restarts,
		Time:          rec.Time,
	}
}

// containerCollection names the per-container collection.
func containerCollection(containerName string) string {
	return containerName + "-containerinfo"
}
