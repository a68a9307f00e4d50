package kinesis

import (
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"github.com/example/kingdom-gateway/internal/command"
)

// ConvertFromKinesisRecord decodes the record's data as a command envelope.
func ConvertFromKinesisRecord(record events.KinesisEventRecord) (command.Envelope, error) {
	if len(record.Kinesis.Data) == 0 {
		return command.Envelope{}, fmt.Errorf("%w: empty record data", command.ErrDecode)
	}
	return command.DecodeEnvelope(record.Kinesis.Data)
}

// BatchConvertFromKinesisEvent converts all records of a Kinesis event.
// Records that fail to decode are reported in errs and skipped.
func BatchConvertFromKinesisEvent(kinesisEvent events.KinesisEvent) ([]command.Envelope, []error) {
	var envelopes []command.Envelope
	var errs []error

	for _, record := range kinesisEvent.Records {
		env, err := ConvertFromKinesisRecord(record)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %s: %w", record.EventID, err))
			continue
		}
		envelopes = append(envelopes, env)
	}

	return envelopes, errs
}
