package domains

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"go.uber.org/zap"
)

// Route53API is the subset of *route53.Client the registrar uses.
type Route53API interface {
	ChangeResourceRecordSets(ctx context.Context, in *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
}

// Route53Registrar publishes custom domains as CNAME records in a hosted
// zone the municipalities delegate to the platform.
type Route53Registrar struct {
	api          Route53API
	hostedZoneID string
	target       string
	ttl          int64
	log          *zap.Logger
}

// NewRoute53Registrar returns a registrar that points every added host at
// target in hostedZoneID.
func NewRoute53Registrar(api Route53API, hostedZoneID, target string, logger *zap.Logger) *Route53Registrar {
	return &Route53Registrar{api: api, hostedZoneID: hostedZoneID, target: target, ttl: 300, log: logger}
}

func (r *Route53Registrar) Add(ctx context.Context, host string) error {
	return r.change(ctx, types.ChangeActionUpsert, host)
}

func (r *Route53Registrar) Remove(ctx context.Context, host string) error {
	return r.change(ctx, types.ChangeActionDelete, host)
}

func (r *Route53Registrar) change(ctx context.Context, action types.ChangeAction, host string) error {
	out, err := r.api.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(r.hostedZoneID),
		ChangeBatch: &types.ChangeBatch{
			Comment: aws.String("civickey custom domain " + host),
			Changes: []types.Change{{
				Action: action,
				ResourceRecordSet: &types.ResourceRecordSet{
					Name:            aws.String(host),
					Type:            types.RRTypeCname,
					TTL:             aws.Int64(r.ttl),
					ResourceRecords: []types.ResourceRecord{{Value: aws.String(r.target)}},
				},
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("route53 %s %s: %w", action, host, err)
	}
	fields := []zap.Field{zap.String("host", host), zap.String("action", string(action))}
	if out != nil && out.ChangeInfo != nil {
		fields = append(fields, zap.String("change_id", aws.ToString(out.ChangeInfo.Id)))
	}
	r.log.Info("route53 record changed", fields...)
	return nil
}
