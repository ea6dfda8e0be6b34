package handlers

import (
	"strings"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/internal/services"
	"gbtravel/internal/utils"
	"gbtravel/internal/validators"

	"github.com/gin-gonic/gin"
)

const catalogPageSize = 12

type TripHandler struct {
	tripService  services.TripService
	imageService services.ImageService
}

func NewTripHandler(tripService services.TripService, imageService services.ImageService) *TripHandler {
	return &TripHandler{tripService: tripService, imageService: imageService}
}

func (h *TripHandler) ListTrips(c *gin.Context) {
	params := utils.GetPaginationParams(c, catalogPageSize)
	filter := &interfaces.TripFilter{
		MinPrice:   queryFloat(c, "minPrice"),
		MaxPrice:   queryFloat(c, "maxPrice"),
		MinDays:    queryInt(c, "minDays"),
		MaxDays:    queryInt(c, "maxDays"),
		Difficulty: models.DifficultyLevel(c.Query("difficulty")),
		TripType:   models.TripType(c.Query("type")),
		Sort:       c.Query("sort"),
	}
	if featured := queryBool(c, "featured"); featured != nil && *featured {
		filter.Featured = featured
	}
	if raw := c.Query("destination"); raw != "" {
		id, err := utils.ParseObjectID(raw, "destination ID")
		if err != nil {
			utils.HandleError(c, err)
			return
		}
		filter.Destination = &id
	}

	trips, total, err := h.tripService.ListTrips(c.Request.Context(), filter, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Trips retrieved successfully", trips, utils.CreatePaginationMeta(params, total))
}

func (h *TripHandler) SearchTrips(c *gin.Context) {
	params := utils.GetPaginationParams(c, catalogPageSize)
	trips, total, err := h.tripService.SearchTrips(c.Request.Context(), strings.TrimSpace(c.Query("q")), params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Search results", trips, utils.CreatePaginationMeta(params, total))
}

func (h *TripHandler) GetFeaturedTrips(c *gin.Context) {
	trips, err := h.tripService.GetFeaturedTrips(c.Request.Context(), queryLimit(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Featured trips retrieved", gin.H{"trips": trips})
}

func (h *TripHandler) GetUpcomingTrips(c *gin.Context) {
	trips, err := h.tripService.GetUpcomingTrips(c.Request.Context(), queryLimit(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Upcoming trips retrieved", gin.H{"trips": trips})
}

func (h *TripHandler) GetTripsByDestination(c *gin.Context) {
	destinationID, err := utils.ParamObjectID(c, "destinationId", "destination ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	params := utils.GetPaginationParams(c, catalogPageSize)
	trips, total, err := h.tripService.GetTripsByDestination(c.Request.Context(), destinationID, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Trips retrieved successfully", trips, utils.CreatePaginationMeta(params, total))
}

// GetTrip accepts an id or a slug
func (h *TripHandler) GetTrip(c *gin.Context) {
	detail, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Trip retrieved successfully", detail)
}

func (h *TripHandler) GetAvailability(c *gin.Context) {
	id, err := utils.ParamObjectID(c, "id", "trip ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	availability, err := h.tripService.GetAvailability(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Availability retrieved", availability)
}

func (h *TripHandler) CreateTrip(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}

	var request services.TripRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	trip, err := h.tripService.CreateTrip(c.Request.Context(), caller, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Trip created successfully", gin.H{"trip": trip})
}

func (h *TripHandler) UpdateTrip(c *gin.Context) {
	id, err := utils.ParamObjectID(c, "id", "trip ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	var request services.UpdateTripRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	trip, err := h.tripService.UpdateTrip(c.Request.Context(), id, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Trip updated successfully", gin.H{"trip": trip})
}

func (h *TripHandler) DeleteTrip(c *gin.Context) {
	id, err := utils.ParamObjectID(c, "id", "trip ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if err := h.tripService.DeleteTrip(c.Request.Context(), id); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Trip deleted successfully", nil)
}

func (h *TripHandler) UploadImage(c *gin.Context) {
	id, err := utils.ParamObjectID(c, "id", "trip ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	upload, closeFn, err := readImageUpload(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	defer closeFn()

	trip, err := h.imageService.UploadTripImage(c.Request.Context(), id, upload)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Image uploaded successfully", gin.H{"trip": trip})
}

// readImageUpload reads the multipart "image" field along with alt and isPrimary.
func readImageUpload(c *gin.Context) (*services.ImageUpload, func(), error) {
	header, err := c.FormFile("image")
	if err != nil {
		return nil, nil, utils.NewBadRequestError("Image file is required").Wrap(err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, utils.NewBadRequestError("Could not read uploaded image").Wrap(err)
	}

	return &services.ImageUpload{
		Reader:      file,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Alt:         c.PostForm("alt"),
		IsPrimary:   c.PostForm("isPrimary") == "true",
	}, func() { _ = file.Close() }, nil
}
