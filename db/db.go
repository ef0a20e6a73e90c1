package db

import (
	"strconv"

	"github.com/tightknit/bandsync/constants"
	"github.com/tightknit/bandsync/model"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// GetSongMetadatas fetches the sidecar metadata for baked song assets, keyed
// by asset name. Metadata is display-only: no unit needs it to play.
func GetSongMetadatas(names []string) map[string]model.SongMetadata {
	if len(names) > 10 {
		panic("Not supposed to pass in more than 10 names!")
	}

	res := make(map[string]model.SongMetadata)

	if len(names) == 0 {
		return res
	}

	var keys []map[string]*dynamodb.AttributeValue
	for _, name := range names {
		key := make(map[string]*dynamodb.AttributeValue)
		key["PK"] = &dynamodb.AttributeValue{
			S: aws.String(name),
		}
		keys = append(keys, key)
	}

	endpoint := constants.GetMetadataEndpoint()
	session, err := session.NewSession(&aws.Config{
		Region:   aws.String("localhost"),
		Endpoint: &endpoint,
	})
	if err != nil {
		panic("Could not create a new DynamoDB session because " + err.Error())
	}

	client := dynamodb.New(session)
	input := &dynamodb.BatchGetItemInput{
		RequestItems: map[string]*dynamodb.KeysAndAttributes{
			"bandsync-songs": {Keys: keys},
		},
	}
	dbres, err := client.BatchGetItem(input)
	if err != nil {
		panic("Error from DynamoDB: " + err.Error())
	}

	for _, v := range dbres.Responses["bandsync-songs"] {
		var s model.SongMetadata
		if v["Year"].N != nil {
			year, _ := strconv.ParseUint(*v["Year"].N, 10, 32)
			s.Year = uint(year)
		}
		s.Title = *v["Title"].S
		s.Artist = *v["Artist"].S
		s.Source = *v["Source"].S
		res[*v["PK"].S] = s
	}

	return res
}
