package datastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/testdata"
)

func TestRethinkStore_FindImage(t *testing.T) {
	ds, mock := InitMockDB(t)
	testdata.InitMockDBData(mock)

	got, err := ds.FindImage(context.Background(), "2")
	require.NoError(t, err)
	require.Equal(t, testdata.Img2.ExternalURL, got.ExternalURL)

	_, err = ds.FindImage(context.Background(), "999")
	require.True(t, floorplan.IsNotFound(err))

	_, err = ds.FindImage(context.Background(), "404")
	require.Error(t, err)
	require.False(t, floorplan.IsNotFound(err))
}

func TestRethinkStore_ListImages(t *testing.T) {
	ds, mock := InitMockDB(t)
	testdata.InitMockDBData(mock)

	got, err := ds.ListImages(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestRethinkStore_CreateAndDeleteImage(t *testing.T) {
	ds, mock := InitMockDB(t)
	testdata.InitMockDBData(mock)

	img := &floorplan.Image{Base: floorplan.Base{ID: "3"}, Filename: "hall-c.png"}
	require.NoError(t, ds.CreateImage(context.Background(), img))
	require.NoError(t, ds.DeleteImage(context.Background(), img))
}
