package handlers

import (
	"strings"

	"gbtravel/internal/repositories/interfaces"
	"gbtravel/internal/services"
	"gbtravel/internal/utils"
	"gbtravel/internal/validators"

	"github.com/gin-gonic/gin"
)

type DestinationHandler struct {
	destinationService services.DestinationService
	imageService       services.ImageService
}

func NewDestinationHandler(destinationService services.DestinationService, imageService services.ImageService) *DestinationHandler {
	return &DestinationHandler{destinationService: destinationService, imageService: imageService}
}

func (h *DestinationHandler) ListDestinations(c *gin.Context) {
	params := utils.GetPaginationParams(c, catalogPageSize)
	filter := &interfaces.DestinationFilter{
		Country: c.Query("country"),
		Sort:    c.Query("sort"),
		Tags:    splitList(c.Query("tags")),
	}
	if featured := queryBool(c, "featured"); featured != nil && *featured {
		filter.Featured = featured
	}

	destinations, total, err := h.destinationService.ListDestinations(c.Request.Context(), filter, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Destinations retrieved successfully", destinations, utils.CreatePaginationMeta(params, total))
}

func (h *DestinationHandler) SearchDestinations(c *gin.Context) {
	params := utils.GetPaginationParams(c, 10)
	filter := &interfaces.DestinationFilter{
		Search:    strings.TrimSpace(c.Query("q")),
		Country:   c.Query("country"),
		MinBudget: queryFloat(c, "minBudget"),
		MaxBudget: queryFloat(c, "maxBudget"),
	}

	destinations, total, err := h.destinationService.SearchDestinations(c.Request.Context(), filter, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Search results", destinations, utils.CreatePaginationMeta(params, total))
}

func (h *DestinationHandler) GetFeatured(c *gin.Context) {
	destinations, err := h.destinationService.GetFeaturedDestinations(c.Request.Context(), queryLimit(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Featured destinations retrieved", gin.H{"destinations": destinations})
}

func (h *DestinationHandler) GetPopular(c *gin.Context) {
	destinations, err := h.destinationService.GetPopularDestinations(c.Request.Context(), queryLimit(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Popular destinations retrieved", gin.H{"destinations": destinations})
}

func (h *DestinationHandler) GetCountries(c *gin.Context) {
	countries, err := h.destinationService.GetCountries(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Countries retrieved", gin.H{"countries": countries})
}

// GetDestination accepts an id or a slug
func (h *DestinationHandler) GetDestination(c *gin.Context) {
	detail, err := h.destinationService.GetDestination(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Destination retrieved successfully", detail)
}

func (h *DestinationHandler) CreateDestination(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}

	var request services.DestinationRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	destination, err := h.destinationService.CreateDestination(c.Request.Context(), caller, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Destination created successfully", gin.H{"destination": destination})
}

func (h *DestinationHandler) UpdateDestination(c *gin.Context) {
	id, err := utils.ParamObjectID(c, "id", "destination ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	var request services.UpdateDestinationRequest
	if err := validators.BindJSON(c, &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	destination, err := h.destinationService.UpdateDestination(c.Request.Context(), id, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Destination updated successfully", gin.H{"destination": destination})
}

func (h *DestinationHandler) DeleteDestination(c *gin.Context) {
	id, err := utils.ParamObjectID(c, "id", "destination ID")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if err := h.destinationService.DeleteDestination(c.Request.Context(), id); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Destination deleted successfully", nil)
}

func (h *DestinationHandler) UploadImage(c *gin.Context) {
	id, err := utils.ParamObjectID(c, "id", "destination ID")
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

	destination, err := h.imageService.UploadDestinationImage(c.Request.Context(), id, upload)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Image uploaded successfully", gin.H{"destination": destination})
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
